package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boshu2/claude-hooks/internal/config"
	"github.com/boshu2/claude-hooks/internal/gate"
	"github.com/boshu2/claude-hooks/internal/hookio"
)

func decodeResponse(t *testing.T, stdout string) hookio.Response {
	t.Helper()
	var resp hookio.Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), "stdout: %q", stdout)
	require.NotNil(t, resp.HookSpecificOutput)
	return resp
}

func TestGateDeniesDeprecatedInstall(t *testing.T) {
	isolate(t)
	stdout, _, code := execute(t,
		`{"tool_name":"Bash","tool_input":{"command":"pip install google-generativeai"}}`, "gate")

	assert.Equal(t, 0, code)
	resp := decodeResponse(t, stdout)
	assert.Equal(t, hookio.EventPreToolUse, resp.HookSpecificOutput.HookEventName)
	assert.Equal(t, hookio.DecisionDeny, resp.HookSpecificOutput.PermissionDecision)
	assert.Contains(t, resp.HookSpecificOutput.PermissionDecisionReason, "google-genai")
}

func TestGateAllowsSilently(t *testing.T) {
	isolate(t)
	inputs := []string{
		`{"tool_name":"Write","tool_input":{"file_path":"notes.md","content":"gemini-1.5 was retired"}}`,
		`{"tool_name":"Bash","tool_input":{"command":"git commit -m 'drop google-generativeai'"}}`,
		`{{{`,
		``,
	}
	for _, in := range inputs {
		stdout, _, code := execute(t, in, "gate")
		assert.Equal(t, 0, code, in)
		assert.Empty(t, stdout, in)
	}
}

func TestGateBypass(t *testing.T) {
	isolate(t)
	t.Setenv("CLAUDE_HOOKS_BYPASS", "1")
	stdout, _, code := execute(t,
		`{"tool_name":"Write","tool_input":{"file_path":"app.py","content":"import google.generativeai"}}`, "gate")
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
}

func TestGateBypassWithMalformedUnrelatedEnv(t *testing.T) {
	isolate(t)
	t.Setenv("CLAUDE_HOOKS_BYPASS", "1")
	t.Setenv("HOOKCTL_RESEARCH_TIMEOUT", "bogus")

	stdout, _, code := execute(t,
		`{"tool_name":"Bash","tool_input":{"command":"pip install google-generativeai"}}`, "gate")
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
}

func TestGateBypassRequiresLiteralOne(t *testing.T) {
	isolate(t)
	t.Setenv("CLAUDE_HOOKS_BYPASS", "true")
	stdout, _, _ := execute(t,
		`{"tool_name":"Write","tool_input":{"file_path":"app.py","content":"import google.generativeai"}}`, "gate")
	assert.NotEmpty(t, stdout)
}

func TestGateExtraRuleFromConfig(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, `
gate:
  extra_rules:
    - name: no-left-pad
      pattern: left-pad
      reason: Use String.prototype.padStart.
`)
	stdout, _, code := execute(t, `{"tool_name":"Bash","tool_input":{"command":"npm install left-pad"}}`, "gate")
	assert.Equal(t, 0, code)
	resp := decodeResponse(t, stdout)
	assert.Equal(t, "Use String.prototype.padStart.", resp.HookSpecificOutput.PermissionDecisionReason)
}

func TestGateInvalidConfigFallsBackToBuiltins(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, `
gate:
  rules:
    - name: broken
      pattern: "("
      match: regex
      reason: never compiles
`)
	stdout, _, code := execute(t, `{"tool_name":"Bash","tool_input":{"command":"npm i @google/generative-ai"}}`, "gate")
	assert.Equal(t, 0, code)
	resp := decodeResponse(t, stdout)
	assert.Contains(t, resp.HookSpecificOutput.PermissionDecisionReason, "@google/genai")
}

func TestGateInstallPatternFromConfig(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, `
gate:
  install_pattern: '\bnpm\s+ci\b'
`)
	stdout, _, code := execute(t, `{"tool_name":"Bash","tool_input":{"command":"npm ci @google/generative-ai"}}`, "gate")
	assert.Equal(t, 0, code)
	resp := decodeResponse(t, stdout)
	assert.Contains(t, resp.HookSpecificOutput.PermissionDecisionReason, "@google/genai")

	stdout, _, _ = execute(t, `{"tool_name":"Bash","tool_input":{"command":"npm install @google/generative-ai"}}`, "gate")
	assert.Empty(t, stdout, "default install pattern replaced")
}

func TestBuildGate(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		g, err := buildGate(&config.Config{})
		require.NoError(t, err)
		assert.Len(t, g.Rules(), len(gate.DefaultRules()))
	})

	t.Run("rules replace and extras append", func(t *testing.T) {
		c := &config.Config{Gate: config.GateConfig{
			Rules:      []config.RuleConfig{{Name: "a", Pattern: "x", Reason: "r"}},
			ExtraRules: []config.RuleConfig{{Name: "b", Pattern: "y", Match: "regex", IgnoreCase: true, Reason: "r"}},
		}}
		g, err := buildGate(c)
		require.NoError(t, err)
		rules := g.Rules()
		require.Len(t, rules, 2)
		assert.Equal(t, "a", rules[0].Name)
		assert.Equal(t, gate.MatchSubstring, rules[0].Match)
		assert.Equal(t, gate.MatchRegex, rules[1].Match)
	})

	t.Run("invalid install pattern falls back", func(t *testing.T) {
		g, err := buildGate(&config.Config{Gate: config.GateConfig{InstallPattern: "("}})
		require.Error(t, err)
		assert.ErrorIs(t, err, gate.ErrInvalidPattern)
		require.NotNil(t, g)
		assert.True(t, g.IsInstallCommand("npm install x"))
	})

	t.Run("invalid falls back", func(t *testing.T) {
		c := &config.Config{Gate: config.GateConfig{
			ExtraRules: []config.RuleConfig{{Name: "bad", Pattern: "x"}},
		}}
		g, err := buildGate(c)
		require.Error(t, err)
		assert.ErrorIs(t, err, gate.ErrEmptyReason)
		require.NotNil(t, g)
		assert.Len(t, g.Rules(), len(gate.DefaultRules()))
	})
}

func TestRulesCommand(t *testing.T) {
	isolate(t)

	stdout, _, code := execute(t, "", "rules")
	require.Equal(t, 0, code)
	for _, r := range gate.DefaultRules() {
		assert.Contains(t, stdout, r.Name)
	}

	stdout, _, code = execute(t, "", "rules", "-o", "json")
	require.Equal(t, 0, code)
	var rules []gate.Rule
	require.NoError(t, json.Unmarshal([]byte(stdout), &rules))
	assert.Len(t, rules, len(gate.DefaultRules()))
}
