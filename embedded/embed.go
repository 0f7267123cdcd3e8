// Package embedded provides the hook wrapper scripts and manifest embedded in
// the hookctl binary. They are extracted to disk when no source checkout is
// available (e.g., go install or release archives).
package embedded

import (
	"embed"
	"io/fs"
)

// HooksFS contains the hooks manifest and one directory per host event.
// Use fs.WalkDir to extract files to disk.
//
//go:embed all:hooks
var HooksFS embed.FS

// Bundle returns HooksFS rooted at the bundle directory.
func Bundle() fs.FS {
	sub, err := fs.Sub(HooksFS, "hooks")
	if err != nil {
		// "hooks" is a valid path; Sub only fails on invalid names.
		panic(err)
	}
	return sub
}
