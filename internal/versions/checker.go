package versions

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/boshu2/claude-hooks/internal/hookio"
	"github.com/boshu2/claude-hooks/internal/logging"
	"github.com/boshu2/claude-hooks/internal/storage"
	"github.com/boshu2/claude-hooks/internal/worker"
)

// Diff is a package whose pinned major lags the latest release.
type Diff struct {
	Package          string
	InstalledVersion string
	InstalledMajor   int
	LatestVersion    string
	LatestMajor      int

	// Research is the breaking-changes brief, or a parenthesized failure note.
	Research string
	Cached   bool
}

// Checker runs version checks for install commands.
type Checker struct {
	// Registries maps registry kinds to clients.
	Registries map[RegistryKind]Registry

	Cache      storage.Cache
	Researcher Researcher

	// MaxResearch caps concurrent research calls (default 10).
	MaxResearch int

	// LookupLimit caps concurrent registry lookups (default 8).
	LookupLimit int

	// Progress receives human-readable status lines. Nil discards them.
	Progress io.Writer

	Logger *zap.Logger
}

// Check inspects ev and returns a report, or nil when the event is not an
// install command or nothing diverges. fallbackCwd is used when the event
// carries no cwd. Registry and research failures degrade to fewer results;
// the returned error only reports cache persistence problems.
func (c *Checker) Check(ctx context.Context, ev hookio.Event, fallbackCwd string) (*Report, error) {
	log := logging.OrNop(c.Logger)

	run, ok := ev.(hookio.RunEvent)
	if !ok {
		return nil, nil
	}
	cwd := ev.Meta().Cwd
	if cwd == "" {
		cwd = fallbackCwd
	}
	dir, command := hookio.SplitCd(run.Command, cwd)

	manager, ok := Detect(command)
	if !ok {
		return nil, nil
	}
	c.progress("📦", "Detected %s install command", manager)

	pinned := c.pinnedPackages(command, dir, manager, log)
	if len(pinned) == 0 {
		c.progress("✓", "No packages to check")
		return nil, nil
	}
	c.progress("🔍", "Checking %d packages for version diffs...", len(pinned))

	diffs := c.compare(ctx, manager.Registry(), pinned)
	if len(diffs) == 0 {
		c.progress("✅", "All packages up to date")
		return nil, nil
	}
	diffs = c.dropRedundantTypes(diffs)
	c.progress("⚠️", "Found %d packages with major version diffs", len(diffs))

	cacheErr := c.research(ctx, diffs, log)

	return &Report{Checked: len(pinned), Diffs: diffs}, cacheErr
}

// pinnedPackages resolves which manifest entries the command touches.
func (c *Checker) pinnedPackages(command, dir string, manager Manager, log *zap.Logger) Manifest {
	var reqFile string
	if manager == Pip {
		reqFile = RequirementsFile(command, dir)
	}

	var explicit []string
	if reqFile == "" {
		explicit = CommandPackages(command, manager)
	}

	var (
		manifest Manifest
		err      error
	)
	switch {
	case manager.Registry() == RegistryNPM:
		manifest, err = ReadPackageJSON(dir)
	case reqFile != "":
		c.progress("📄", "Parsing %s", reqFile)
		manifest, err = ReadRequirements(reqFile)
	default:
		manifest, err = ReadRequirements(filepath.Join(dir, "requirements.txt"))
	}
	if err != nil {
		log.Debug("manifest unreadable", zap.String("dir", dir), zap.Error(err))
		return nil
	}

	if len(explicit) > 0 {
		c.progress("🔍", "Checking: %s", strings.Join(explicit, ", "))
		return manifest.Select(explicit)
	}
	return manifest
}

// compare looks up latest versions and keeps major-version jumps, in
// manifest order.
func (c *Checker) compare(ctx context.Context, kind RegistryKind, pinned Manifest) []Diff {
	reg, ok := c.Registries[kind]
	if !ok {
		return nil
	}

	names := make([]string, 0, len(pinned))
	for _, p := range pinned {
		if _, ok := Major(p.Version); ok {
			names = append(names, p.Name)
		}
	}
	latest := LatestVersions(ctx, reg, names, c.LookupLimit, c.Logger)

	var diffs []Diff
	for _, p := range pinned {
		oldMajor, ok := Major(p.Version)
		if !ok {
			continue
		}
		v, ok := latest[p.Name]
		if !ok {
			continue
		}
		newMajor, ok := Major(v)
		if !ok || newMajor == oldMajor {
			continue
		}
		diffs = append(diffs, Diff{
			Package:          p.Name,
			InstalledVersion: p.Version,
			InstalledMajor:   oldMajor,
			LatestVersion:    v,
			LatestMajor:      newMajor,
		})
	}
	return diffs
}

// dropRedundantTypes removes @types/X when X itself is flagged.
func (c *Checker) dropRedundantTypes(diffs []Diff) []Diff {
	base := make(map[string]bool, len(diffs))
	for _, d := range diffs {
		if !strings.HasPrefix(d.Package, "@types/") {
			base[d.Package] = true
		}
	}

	out := diffs[:0]
	for _, d := range diffs {
		if name, ok := strings.CutPrefix(d.Package, "@types/"); ok && base[name] {
			c.progress("↩️", "Skipping %s (redundant with %s)", d.Package, name)
			continue
		}
		out = append(out, d)
	}
	return out
}

// research fills in briefs from the cache or the researcher, then persists
// new successes.
func (c *Checker) research(ctx context.Context, diffs []Diff, log *zap.Logger) error {
	cache := map[string]string{}
	if c.Cache != nil {
		loaded, err := c.Cache.Load()
		if err != nil {
			log.Warn("research cache unreadable, starting empty", zap.Error(err))
		}
		if loaded != nil {
			cache = loaded
		}
	}

	var pending []int
	for i := range diffs {
		key := storage.ResearchKey(diffs[i].Package, diffs[i].InstalledMajor, diffs[i].LatestMajor)
		if summary, ok := cache[key]; ok {
			c.progress("⚡", "Cache hit: %s", diffs[i].Package)
			diffs[i].Research = summary
			diffs[i].Cached = true
			continue
		}
		pending = append(pending, i)
	}
	if len(pending) == 0 {
		return nil
	}

	labels := make([]string, len(pending))
	for j, i := range pending {
		labels[j] = fmt.Sprintf("%s (%d→%d)", diffs[i].Package, diffs[i].InstalledMajor, diffs[i].LatestMajor)
	}
	c.progress("⏳", "Researching: %s", strings.Join(labels, ", "))

	maxResearch := c.MaxResearch
	if maxResearch <= 0 {
		maxResearch = DefaultMaxResearch
	}
	pool := worker.NewPool[Diff, string](maxResearch)
	items := make([]Diff, len(pending))
	for j, i := range pending {
		items[j] = diffs[i]
	}
	results := pool.Process(ctx, items, func(ctx context.Context, d Diff) (string, error) {
		if c.Researcher == nil {
			return "", ErrUnknownBackend
		}
		return c.Researcher.Research(ctx, d.Package, d.InstalledMajor, d.LatestMajor)
	})

	added := 0
	for j, r := range results {
		d := &diffs[pending[j]]
		summary := strings.TrimSpace(r.Value)
		if r.Err != nil {
			summary = failureText(d.Package, r.Err)
		} else if summary == "" {
			summary = fmt.Sprintf("(No research output for %s)", d.Package)
		}
		d.Research = summary

		if isFailure(summary) {
			c.progress("❌", "Failed: %s (not cached)", d.Package)
			continue
		}
		cache[storage.ResearchKey(d.Package, d.InstalledMajor, d.LatestMajor)] = summary
		added++
		c.progress("✅", "Completed: %s", d.Package)
	}

	if added == 0 || c.Cache == nil {
		return nil
	}
	if err := c.Cache.Save(cache); err != nil {
		return fmt.Errorf("save research cache: %w", err)
	}
	c.progress("💾", "Research cached for future use")
	return nil
}

func (c *Checker) progress(icon, format string, args ...any) {
	if c.Progress == nil {
		return
	}
	fmt.Fprintf(c.Progress, "%s %s\n", icon, fmt.Sprintf(format, args...)) //nolint:errcheck // best-effort status
}
