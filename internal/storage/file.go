package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// FileCache implements Cache as a single JSON file.
type FileCache struct {
	// Path is the cache file (e.g., ~/.cache/claude-hooks/version-research.json).
	Path string

	mu sync.Mutex
}

// NewFileCache creates a file-backed cache.
func NewFileCache(path string) *FileCache {
	return &FileCache{Path: path}
}

// Load reads the cache. A missing file is an empty cache.
func (fc *FileCache) Load() (map[string]string, error) {
	if fc.Path == "" {
		return nil, ErrNoPath
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()

	entries := make(map[string]string)
	data, err := os.ReadFile(fc.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entries, nil
		}
		return entries, fmt.Errorf("read cache: %w", err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return make(map[string]string), fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}
	return entries, nil
}

// Save replaces the cache file with entries.
func (fc *FileCache) Save(entries map[string]string) error {
	if fc.Path == "" {
		return ErrNoPath
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()

	return atomicWrite(fc.Path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	})
}

// atomicWrite writes to a temp file and renames atomically.
func atomicWrite(path string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	// Create temp file in same directory for atomic rename
	tmpFile, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath) //nolint:errcheck // cleanup in error path
		}
	}()

	if err := writeFunc(tmpFile); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("write content: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("sync file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final: %w", err)
	}

	success = true
	return nil
}
