package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/claude-hooks/internal/session"
)

var sessionContextCmd = &cobra.Command{
	Use:   "session-context",
	Short: "SessionStart hook: print the task tracker digest",
	Long: `Print insights, decisions, in-progress work and up to five ready items from
the task tracker (bd) for the current project. The host injects the output
into the new session.

When the tracker is not installed or the project has no .beads directory,
prints a one-line tip instead. Always exits 0.`,
	Args: cobra.NoArgs,
	RunE: runSessionContext,
}

func init() {
	rootCmd.AddCommand(sessionContextCmd)
}

func runSessionContext(cmd *cobra.Command, args []string) error {
	s := session.NewSummarizer(
		cfg.Session.TrackerCommand,
		workDir,
		cfg.Session.ReadyLimit,
		cfg.Session.QueryTimeout,
	)
	s.Logger = logger

	if digest := s.Summarize(cmd.Context()); digest != "" {
		fmt.Fprintln(cmd.OutOrStdout(), digest)
	}
	return nil
}
