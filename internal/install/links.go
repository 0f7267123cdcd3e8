package install

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LinkAction describes what happened at one link path.
type LinkAction string

const (
	LinkCreated   LinkAction = "created"
	LinkUpdated   LinkAction = "updated"
	LinkUnchanged LinkAction = "unchanged"
	LinkSkipped   LinkAction = "skipped" // non-link file in the way
	LinkReplaced  LinkAction = "replaced"
)

// LinkResult is the outcome for one bundled directory.
type LinkResult struct {
	Name   string
	Source string
	Path   string
	Action LinkAction
}

// Linker symlinks bundled hook directories from SourceDir into TargetDir.
type Linker struct {
	SourceDir string
	TargetDir string

	// Force replaces non-link files at link paths.
	Force bool

	// DryRun reports the actions without touching the filesystem.
	DryRun bool
}

// Link creates or refreshes one link per name. Running it again with the
// same inputs leaves every link unchanged.
func (l Linker) Link(names []string) ([]LinkResult, error) {
	if !l.DryRun {
		if err := os.MkdirAll(l.TargetDir, 0o755); err != nil {
			return nil, fmt.Errorf("create target directory: %w", err)
		}
	}

	results := make([]LinkResult, 0, len(names))
	for _, name := range names {
		src, err := filepath.Abs(filepath.Join(l.SourceDir, name))
		if err != nil {
			return results, fmt.Errorf("resolve %s: %w", name, err)
		}
		if info, err := os.Stat(src); !l.DryRun && (err != nil || !info.IsDir()) {
			return results, fmt.Errorf("%w: %s", ErrMissingBundle, src)
		}

		res, err := l.linkOne(name, src)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (l Linker) linkOne(name, src string) (LinkResult, error) {
	dst := filepath.Join(l.TargetDir, name)
	res := LinkResult{Name: name, Source: src, Path: dst}

	info, err := os.Lstat(dst)
	switch {
	case errors.Is(err, os.ErrNotExist):
		res.Action = LinkCreated
	case err != nil:
		return res, fmt.Errorf("inspect %s: %w", dst, err)
	case info.Mode()&os.ModeSymlink != 0:
		current, err := os.Readlink(dst)
		if err == nil && current == src {
			res.Action = LinkUnchanged
			return res, nil
		}
		res.Action = LinkUpdated
	case !l.Force:
		res.Action = LinkSkipped
		return res, nil
	default:
		res.Action = LinkReplaced
	}

	if l.DryRun {
		return res, nil
	}
	if res.Action != LinkCreated {
		if err := os.RemoveAll(dst); err != nil {
			return res, fmt.Errorf("remove %s: %w", dst, err)
		}
	}
	if err := os.Symlink(src, dst); err != nil {
		return res, fmt.Errorf("link %s: %w", dst, err)
	}
	return res, nil
}
