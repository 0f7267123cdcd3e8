package embedded

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/boshu2/claude-hooks/internal/install"
)

func TestBundleHasEveryHookDirectory(t *testing.T) {
	bundle := Bundle()
	for _, dir := range install.BundleDirs() {
		info, err := fs.Stat(bundle, dir)
		if err != nil {
			t.Fatalf("bundle missing %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}
}

func TestManifestCommandsExistInBundle(t *testing.T) {
	bundle := Bundle()
	data, err := fs.ReadFile(bundle, install.ManifestName)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	config, err := install.ReadManifest(data)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}

	for _, event := range install.EventNames() {
		if config.HookCount(event) == 0 {
			t.Errorf("manifest registers nothing for %s", event)
		}
		for _, g := range config.GetEventGroups(event) {
			for _, h := range g.Hooks {
				rel, ok := strings.CutPrefix(h.Command, install.HooksDirPlaceholder+"/")
				if !ok {
					t.Errorf("%s command %q does not use %s", event, h.Command, install.HooksDirPlaceholder)
					continue
				}
				if _, err := fs.Stat(bundle, rel); err != nil {
					t.Errorf("%s command %q: %v", event, h.Command, err)
				}
			}
		}
	}
}

func TestWrappersExecHookctl(t *testing.T) {
	err := fs.WalkDir(Bundle(), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".sh") {
			return err
		}
		data, err := fs.ReadFile(Bundle(), path)
		if err != nil {
			return err
		}
		if !strings.HasPrefix(string(data), "#!/usr/bin/env bash\n") {
			t.Errorf("%s: missing shebang", path)
		}
		if !strings.Contains(string(data), "exec hookctl ") {
			t.Errorf("%s: does not exec hookctl", path)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
