// Package versions flags package installs whose pinned major version lags
// the registry's latest release, and attaches a short breaking-changes brief
// for each jump.
//
// A check runs in four stages:
//
//  1. Detect: find the package manager in a shell command and the packages
//     it names (or, with none named, every package in the manifest).
//  2. Lookup: fetch latest versions from npm or PyPI concurrently.
//  3. Compare: keep packages whose first numeric component differs.
//  4. Research: reuse cached briefs, fan out research for the rest, and
//     cache successful results keyed by package and major versions.
package versions
