package storage

import "errors"

// Sentinel errors for the storage package. Using sentinels instead of ad-hoc
// fmt.Errorf allows callers to match with errors.Is for reliable error handling.
var (
	// ErrNoPath is returned when a file cache has no path configured.
	ErrNoPath = errors.New("cache path is required")

	// ErrCorruptCache is returned when the cache file is not a JSON object of strings.
	ErrCorruptCache = errors.New("cache file is not a JSON object of strings")
)
