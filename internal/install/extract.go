package install

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrMissingBundle is returned when a bundled hook directory is absent.
var ErrMissingBundle = errors.New("bundled hook directory not found")

// Extract writes every file of fsys under dst. Shell scripts are made
// executable. It returns the number of files written.
func Extract(fsys fs.FS, dst string) (int, error) {
	copied := 0

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		target := filepath.Join(dst, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("mkdir for %s: %w", path, err)
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read embedded %s: %w", path, err)
		}

		perm := os.FileMode(0o644)
		if strings.HasSuffix(path, ".sh") {
			perm = 0o755
		}

		if err := os.WriteFile(target, data, perm); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		// WriteFile keeps the mode of an existing file.
		if err := os.Chmod(target, perm); err != nil {
			return fmt.Errorf("chmod %s: %w", target, err)
		}
		copied++
		return nil
	})

	return copied, err
}

// IsBundle reports whether dir holds every bundled hook directory.
func IsBundle(dir string) bool {
	if dir == "" {
		return false
	}
	for _, name := range BundleDirs() {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}

// FindSourceDir returns the first candidate that holds a complete bundle,
// or "" when none does.
func FindSourceDir(candidates ...string) string {
	for _, c := range candidates {
		if IsBundle(c) {
			return c
		}
	}
	return ""
}
