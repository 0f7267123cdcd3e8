// Package storage persists version research summaries between hook runs.
//
// The cache is a flat JSON object of key → summary with no eviction. Hook
// processes may race on it; writes are atomic renames, so the worst case is
// a lost entry that the next run researches again.
package storage

import "fmt"

// Cache is a key → summary store.
type Cache interface {
	Load() (map[string]string, error)
	Save(entries map[string]string) error
}

// ResearchKey builds the cache key for a major-version jump of pkg.
func ResearchKey(pkg string, oldMajor, newMajor int) string {
	return fmt.Sprintf("%s:%d->%d", pkg, oldMajor, newMajor)
}
