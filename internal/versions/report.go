package versions

import (
	"fmt"
	"strconv"

	"github.com/boshu2/claude-hooks/internal/formatter"
	"github.com/boshu2/claude-hooks/internal/hookio"
)

// Report is the outcome of a check with at least one major-version diff.
type Report struct {
	// Checked is the number of pinned packages considered.
	Checked int
	Diffs   []Diff
}

// CachedCount returns how many briefs came from the cache.
func (r *Report) CachedCount() int {
	n := 0
	for _, d := range r.Diffs {
		if d.Cached {
			n++
		}
	}
	return n
}

// Summary is the one-line message shown to the user.
func (r *Report) Summary() string {
	cached := r.CachedCount()
	researched := len(r.Diffs) - cached
	if researched > 0 {
		return fmt.Sprintf("📦 Checked %d packages → %d major version diffs (researched %d, cached %d)",
			r.Checked, len(r.Diffs), researched, cached)
	}
	return fmt.Sprintf("📦 Checked %d packages → %d major version diffs (all cached ⚡)",
		r.Checked, len(r.Diffs))
}

// Markdown renders the summary table and one section per package.
func (r *Report) Markdown() string {
	doc := &formatter.Document{
		Title:   "Package Version Check",
		Headers: []string{"Package", "Installed", "Latest", "Status"},
	}
	for _, d := range r.Diffs {
		doc.Rows = append(doc.Rows, []string{
			d.Package,
			strconv.Itoa(d.InstalledMajor),
			strconv.Itoa(d.LatestMajor),
			"Breaking changes",
		})
		doc.Sections = append(doc.Sections, formatter.Section{
			Heading: fmt.Sprintf("%s: %d → %d", d.Package, d.InstalledMajor, d.LatestMajor),
			Body:    d.Research,
		})
	}
	return formatter.NewMarkdownFormatter().String(doc)
}

// Response is the PostToolUse payload carrying the report.
func (r *Report) Response() *hookio.Response {
	return hookio.Context(hookio.EventPostToolUse, r.Summary(), r.Markdown())
}
