package versions

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boshu2/claude-hooks/internal/hookio"
)

func sampleReport() *Report {
	return &Report{
		Checked: 4,
		Diffs: []Diff{
			{Package: "react", InstalledMajor: 18, LatestMajor: 19, Research: "- `forwardRef` → ref prop", Cached: true},
			{Package: "next", InstalledMajor: 14, LatestMajor: 15, Research: "- async request APIs"},
		},
	}
}

func TestReportSummary(t *testing.T) {
	rep := sampleReport()
	assert.Equal(t, "📦 Checked 4 packages → 2 major version diffs (researched 1, cached 1)", rep.Summary())

	rep.Diffs[1].Cached = true
	assert.Equal(t, "📦 Checked 4 packages → 2 major version diffs (all cached ⚡)", rep.Summary())
}

func TestReportMarkdown(t *testing.T) {
	md := sampleReport().Markdown()

	assert.Contains(t, md, "## Package Version Check\n")
	assert.Contains(t, md, "| Package | Installed | Latest | Status |\n|---------|-----------|--------|--------|\n")
	assert.Contains(t, md, "| react | 18 | 19 | Breaking changes |\n| next | 14 | 15 | Breaking changes |\n")
	assert.Contains(t, md, "### react: 18 → 19\n\n- `forwardRef` → ref prop\n")
	assert.Contains(t, md, "### next: 14 → 15\n\n- async request APIs\n")
	assert.Less(t, bytes.Index([]byte(md), []byte("### react")), bytes.Index([]byte(md), []byte("### next")))
}

func TestReportResponse(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, hookio.Write(&buf, sampleReport().Response()))

	var got struct {
		SystemMessage      string `json:"systemMessage"`
		HookSpecificOutput struct {
			HookEventName     string `json:"hookEventName"`
			AdditionalContext string `json:"additionalContext"`
		} `json:"hookSpecificOutput"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "PostToolUse", got.HookSpecificOutput.HookEventName)
	assert.Contains(t, got.SystemMessage, "Checked 4 packages")
	assert.Contains(t, got.HookSpecificOutput.AdditionalContext, "| react | 18 | 19 |")
}
