package versions

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boshu2/claude-hooks/internal/hookio"
	"github.com/boshu2/claude-hooks/internal/storage"
)

type staticRegistry map[string]string

func (s staticRegistry) Latest(_ context.Context, name string) (string, error) {
	if v, ok := s[name]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

type fakeResearcher struct {
	mu      sync.Mutex
	calls   []string
	answers map[string]string
	errs    map[string]error
}

func (f *fakeResearcher) Research(_ context.Context, pkg string, _, _ int) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, pkg)
	f.mu.Unlock()
	if err, ok := f.errs[pkg]; ok {
		return "", err
	}
	if a, ok := f.answers[pkg]; ok {
		return a, nil
	}
	return "- brief for " + pkg, nil
}

type memCache struct {
	entries map[string]string
	saves   int
}

func (m *memCache) Load() (map[string]string, error) {
	out := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out, nil
}

func (m *memCache) Save(entries map[string]string) error {
	m.saves++
	m.entries = entries
	return nil
}

func bash(cwd, command string) hookio.Event {
	return hookio.NewRunEvent(hookio.Meta{ToolName: hookio.ToolBash, Cwd: cwd}, command)
}

func newChecker(reg Registry, r Researcher, cache storage.Cache, progress *bytes.Buffer) *Checker {
	c := &Checker{
		Registries: map[RegistryKind]Registry{RegistryNPM: reg, RegistryPyPI: reg},
		Cache:      cache,
		Researcher: r,
	}
	if progress != nil {
		c.Progress = progress
	}
	return c
}

func TestCheckIgnoresNonInstallEvents(t *testing.T) {
	c := newChecker(staticRegistry{}, &fakeResearcher{}, &memCache{}, nil)
	ctx := context.Background()

	events := []hookio.Event{
		hookio.NewWriteEvent(hookio.Meta{ToolName: hookio.ToolWrite}, "package.json", "{}"),
		bash(t.TempDir(), "npm run build"),
		bash(t.TempDir(), "git status"),
	}
	for _, ev := range events {
		rep, err := c.Check(ctx, ev, "")
		assert.NoError(t, err)
		assert.Nil(t, rep)
	}
}

func TestCheckCdPrefixResolvesManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "web", "package.json"),
		`{"dependencies":{"react":"^18.2.0","zod":"^3.22.0"},"devDependencies":{"@types/react":"^18.0.0"}}`)

	reg := staticRegistry{"react": "19.1.0", "zod": "3.23.8", "@types/react": "19.0.1"}
	research := &fakeResearcher{}
	cache := &memCache{entries: map[string]string{}}
	var progress bytes.Buffer
	c := newChecker(reg, research, cache, &progress)

	rep, err := c.Check(context.Background(), bash(root, "cd web && npm i react"), "")
	require.NoError(t, err)
	require.NotNil(t, rep)

	assert.Equal(t, 1, rep.Checked)
	require.Len(t, rep.Diffs, 1)
	assert.Equal(t, Diff{
		Package:          "react",
		InstalledVersion: "^18.2.0",
		InstalledMajor:   18,
		LatestVersion:    "19.1.0",
		LatestMajor:      19,
		Research:         "- brief for react",
	}, rep.Diffs[0])
	assert.Equal(t, map[string]string{"react:18->19": "- brief for react"}, cache.entries)
	assert.Contains(t, progress.String(), "Detected npm install command")
}

func TestCheckAllManifestPackagesDropsRedundantTypes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"),
		`{"dependencies":{"react":"^18.2.0","next":"14.1.0","left-pad":"latest"},"devDependencies":{"@types/react":"^18.0.0","@types/node":"^20.0.0"}}`)

	reg := staticRegistry{"react": "19.1.0", "next": "15.0.0", "@types/react": "19.0.1", "@types/node": "22.1.0"}
	research := &fakeResearcher{}
	c := newChecker(reg, research, &memCache{}, nil)

	rep, err := c.Check(context.Background(), bash(dir, "npm install"), "")
	require.NoError(t, err)
	require.NotNil(t, rep)

	var names []string
	for _, d := range rep.Diffs {
		names = append(names, d.Package)
	}
	if diff := cmp.Diff([]string{"react", "next", "@types/node"}, names); diff != "" {
		t.Errorf("flagged packages mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 5, rep.Checked)
	assert.NotContains(t, research.calls, "@types/react")
}

func TestCheckCacheHitSkipsResearch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"dependencies":{"react":"^18.2.0","vite":"^4.0.0"}}`)

	research := &fakeResearcher{}
	cache := &memCache{entries: map[string]string{
		"react:18->19": "- cached react",
		"vite:4->6":    "- cached vite",
	}}
	c := newChecker(staticRegistry{"react": "19.0.0", "vite": "6.0.1"}, research, cache, nil)

	rep, err := c.Check(context.Background(), bash(dir, "npm i"), "")
	require.NoError(t, err)
	require.NotNil(t, rep)

	assert.Empty(t, research.calls)
	assert.Equal(t, 0, cache.saves)
	assert.Equal(t, 2, rep.CachedCount())
	assert.Equal(t, "- cached react", rep.Diffs[0].Research)
	assert.Contains(t, rep.Summary(), "all cached")
}

func TestCheckFailuresAreNotCached(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"dependencies":{"a":"1.0.0","b":"1.0.0","c":"1.0.0"}}`)

	research := &fakeResearcher{
		answers: map[string]string{"c": "(model declined)"},
		errs:    map[string]error{"b": context.DeadlineExceeded},
	}
	cache := &memCache{entries: map[string]string{}}
	c := newChecker(staticRegistry{"a": "2.0.0", "b": "2.0.0", "c": "2.0.0"}, research, cache, nil)

	rep, err := c.Check(context.Background(), bash(dir, "npm i"), "")
	require.NoError(t, err)
	require.Len(t, rep.Diffs, 3)

	assert.Equal(t, "(Research timed out for b)", rep.Diffs[1].Research)
	assert.Equal(t, "(model declined)", rep.Diffs[2].Research)
	assert.Equal(t, map[string]string{"a:1->2": "- brief for a"}, cache.entries)
}

func TestCheckNothingCachedSkipsSave(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"dependencies":{"a":"1.0.0"}}`)

	cache := &memCache{}
	research := &fakeResearcher{errs: map[string]error{"a": errors.New("offline")}}
	c := newChecker(staticRegistry{"a": "2.0.0"}, research, cache, nil)

	rep, err := c.Check(context.Background(), bash(dir, "npm i"), "")
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Equal(t, 0, cache.saves)
}

func TestCheckUpToDateAndNoManifest(t *testing.T) {
	dir := t.TempDir()
	c := newChecker(staticRegistry{"react": "18.3.0"}, &fakeResearcher{}, &memCache{}, nil)

	rep, err := c.Check(context.Background(), bash(dir, "npm i react"), "")
	require.NoError(t, err)
	assert.Nil(t, rep, "no package.json means nothing to check")

	writeFile(t, filepath.Join(dir, "package.json"), `{"dependencies":{"react":"^18.2.0"}}`)
	rep, err = c.Check(context.Background(), bash(dir, "npm i react"), "")
	require.NoError(t, err)
	assert.Nil(t, rep, "same major is not flagged")
}

func TestCheckExplicitPackageNotPinned(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"dependencies":{"react":"^18.2.0"}}`)
	c := newChecker(staticRegistry{"react": "19.0.0", "zod": "3.0.0"}, &fakeResearcher{}, &memCache{}, nil)

	rep, err := c.Check(context.Background(), bash(dir, "npm i zod"), "")
	require.NoError(t, err)
	assert.Nil(t, rep)
}

func TestCheckPipRequirementsFlag(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "reqs", "prod.txt"), "django==4.2.0\nrequests==2.31.0\n")

	research := &fakeResearcher{}
	c := newChecker(staticRegistry{"django": "5.1.0", "requests": "2.32.0"}, research, &memCache{}, nil)

	rep, err := c.Check(context.Background(), bash("", "pip install -r reqs/prod.txt"), dir)
	require.NoError(t, err)
	require.NotNil(t, rep)
	require.Len(t, rep.Diffs, 1)
	assert.Equal(t, "django", rep.Diffs[0].Package)
	assert.Equal(t, 2, rep.Checked)
}

func TestCheckPipExplicit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "requirements.txt"), "pydantic>=1.10\nflask==2.0\n")

	c := newChecker(staticRegistry{"pydantic": "2.9.0", "flask": "3.0.0"}, &fakeResearcher{}, &memCache{}, nil)
	rep, err := c.Check(context.Background(), bash(dir, "pip install pydantic"), "")
	require.NoError(t, err)
	require.NotNil(t, rep)
	require.Len(t, rep.Diffs, 1)
	assert.Equal(t, "pydantic", rep.Diffs[0].Package)
}

func TestCheckProgressGoesToWriter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"dependencies":{"react":"^18.2.0"}}`)
	var progress bytes.Buffer
	c := newChecker(staticRegistry{"react": "19.0.0"}, &fakeResearcher{}, &memCache{}, &progress)

	_, err := c.Check(context.Background(), bash(dir, "npm i"), "")
	require.NoError(t, err)

	out := progress.String()
	for _, want := range []string{"Found 1 packages", "Researching: react (18→19)", "Completed: react", "Research cached"} {
		assert.True(t, strings.Contains(out, want), "progress missing %q:\n%s", want, out)
	}
}
