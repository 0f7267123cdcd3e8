package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boshu2/claude-hooks/internal/hookio"
	"github.com/boshu2/claude-hooks/internal/session"
)

func TestLockCleanIsSilent(t *testing.T) {
	isolate(t)
	repo := t.TempDir()
	lock := filepath.Join(repo, ".git", "index.lock")
	require.NoError(t, os.MkdirAll(filepath.Dir(lock), 0o755))
	require.NoError(t, os.WriteFile(lock, nil, 0o644))

	in := fmt.Sprintf(`{"tool_name":"Bash","cwd":%q,"tool_input":{"command":"ls -la"}}`, repo)
	stdout, _, code := execute(t, in, "lock-clean")
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.FileExists(t, lock, "non-git commands leave the lock alone")

	stdout, _, code = execute(t, "not json", "lock-clean")
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
}

func TestSessionContextPrintsTipWithoutTracker(t *testing.T) {
	isolate(t)
	t.Setenv("HOOKCTL_TRACKER_COMMAND", "hookctl-test-no-such-tracker")

	stdout, _, code := execute(t, `{"hook_event_name":"SessionStart"}`, "session-context")
	assert.Equal(t, 0, code)
	assert.Equal(t, session.Tip+"\n", stdout)
}

func TestVersionCheckIgnoresNonInstall(t *testing.T) {
	isolate(t)
	for _, in := range []string{
		`{"tool_name":"Bash","tool_input":{"command":"npm run build"}}`,
		`{"tool_name":"Write","tool_input":{"file_path":"a.js","content":"x"}}`,
		`garbage`,
	} {
		stdout, _, code := execute(t, in, "version-check")
		assert.Equal(t, 0, code, in)
		assert.Empty(t, stdout, in)
	}
}

func TestVersionCheckReportsMajorGap(t *testing.T) {
	home := isolate(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/react":
			fmt.Fprint(w, `{"dist-tags":{"latest":"18.2.0"}}`)
		case "/lodash":
			fmt.Fprint(w, `{"dist-tags":{"latest":"4.17.21"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	writeConfig(t, home, fmt.Sprintf(`
versions:
  npm_registry: %s
  research_command: hookctl-test-no-such-agent
  cache_file: %s
`, srv.URL, filepath.Join(home, "cache.json")))

	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, "package.json"),
		[]byte(`{"dependencies":{"react":"^17.0.2","lodash":"^4.17.0"}}`), 0o644))

	in := fmt.Sprintf(`{"tool_name":"Bash","cwd":%q,"tool_input":{"command":"npm install"}}`, project)
	stdout, stderr, code := execute(t, in, "version-check")

	assert.Equal(t, versionCheckExitCode, code)
	assert.Contains(t, stderr, "Detected npm install command")

	var resp hookio.Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), "stdout: %q", stdout)
	require.NotNil(t, resp.HookSpecificOutput)
	assert.Equal(t, hookio.EventPostToolUse, resp.HookSpecificOutput.HookEventName)
	assert.Contains(t, resp.SystemMessage, "Checked 2 packages")
	assert.Contains(t, resp.HookSpecificOutput.AdditionalContext, "react")
	assert.False(t, strings.Contains(resp.HookSpecificOutput.AdditionalContext, "lodash"))

	_, err := os.Stat(filepath.Join(home, "cache.json"))
	assert.True(t, os.IsNotExist(err), "failed research is not cached")
}
