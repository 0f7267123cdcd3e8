package install

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ManifestName is the hooks manifest at the root of a bundle.
const ManifestName = "hooks.json"

// Options configures an installation.
type Options struct {
	// SourceDir is a checkout holding the bundled directories. Empty or
	// incomplete means extract Bundle into DataDir and link from there.
	SourceDir string

	// TargetDir receives the links (e.g., ~/.claude/hooks).
	TargetDir string

	// DataDir receives extracted bundle files.
	DataDir string

	// SettingsPath is the host settings file to register hooks in. Empty
	// skips registration.
	SettingsPath string

	// Bundle is the embedded bundle, rooted at the bundle directory.
	Bundle fs.FS

	Force  bool
	DryRun bool

	Now func() time.Time
}

// Result summarizes an installation.
type Result struct {
	SourceDir string
	Extracted int
	Links     []LinkResult

	// Events is the number of host events registered.
	Events int
	Config *HooksConfig

	// Backup is the settings backup path, if one was written.
	Backup string

	// Settings holds the would-be settings document in dry-run mode.
	Settings []byte
}

// Run links the bundle into TargetDir and registers it in SettingsPath.
func Run(opts Options) (*Result, error) {
	res := &Result{SourceDir: opts.SourceDir}

	if !IsBundle(opts.SourceDir) {
		if opts.Bundle == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingBundle, opts.SourceDir)
		}
		res.SourceDir = opts.DataDir
		if !opts.DryRun {
			n, err := Extract(opts.Bundle, opts.DataDir)
			if err != nil {
				return nil, fmt.Errorf("extract bundle: %w", err)
			}
			res.Extracted = n
		}
	}

	linker := Linker{SourceDir: res.SourceDir, TargetDir: opts.TargetDir, Force: opts.Force, DryRun: opts.DryRun}
	links, err := linker.Link(BundleDirs())
	res.Links = links
	if err != nil {
		return res, err
	}

	if opts.SettingsPath == "" {
		return res, nil
	}

	config, err := loadManifest(res.SourceDir, opts.Bundle)
	if err != nil {
		return res, err
	}
	ReplaceHooksDir(config, opts.TargetDir)
	res.Config = config

	raw, err := LoadSettings(opts.SettingsPath)
	if err != nil {
		return res, err
	}
	res.Events = Merger{HooksDir: opts.TargetDir}.Merge(raw, config)

	if opts.DryRun {
		res.Settings, err = MarshalSettings(raw)
		return res, err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	if res.Backup, err = Backup(opts.SettingsPath, now()); err != nil {
		return res, err
	}
	if err := WriteSettings(opts.SettingsPath, raw); err != nil {
		return res, err
	}
	return res, nil
}

// loadManifest prefers the manifest on disk and falls back to the bundle's.
func loadManifest(sourceDir string, bundle fs.FS) (*HooksConfig, error) {
	data, err := os.ReadFile(filepath.Join(sourceDir, ManifestName))
	if err != nil && bundle != nil {
		data, err = fs.ReadFile(bundle, ManifestName)
	}
	if err != nil {
		return nil, fmt.Errorf("read hooks manifest: %w", err)
	}
	return ReadManifest(data)
}
