package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boshu2/claude-hooks/internal/hookio"
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "PreToolUse hook: deny deprecated SDKs and retired models",
	Long: `Read a PreToolUse event on stdin and deny the tool call when the content
it writes, or the package install it runs, matches a policy rule.

Documentation files (.md, .txt, ...) are never scanned. Shell commands are
scanned only when they install packages. A denial prints a JSON decision;
an allowed call prints nothing. The command always exits 0.

Examples:
  echo '{"tool_name":"Bash","tool_input":{"command":"pip install google-generativeai"}}' | hookctl gate`,
	Args: cobra.NoArgs,
	RunE: runGate,
}

func init() {
	rootCmd.AddCommand(gateCmd)
}

func runGate(cmd *cobra.Command, args []string) error {
	g, err := buildGate(cfg)
	if err != nil {
		logger.Warn("gate configuration rejected", zap.Error(err))
	}
	if g == nil {
		return nil
	}

	ev := readEvent(cmd)
	d := g.Evaluate(ev)
	if d.Allowed() {
		return nil
	}

	logger.Debug("denied tool call", zap.String("rule", d.Rule), zap.String("tool", ev.Meta().ToolName))
	if err := hookio.Write(cmd.OutOrStdout(), hookio.Deny(hookio.EventPreToolUse, d.Reason)); err != nil {
		logger.Warn("write decision", zap.Error(err))
	}
	return nil
}
