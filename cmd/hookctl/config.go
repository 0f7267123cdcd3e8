package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/boshu2/claude-hooks/internal/config"
)

var configShow bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show resolved configuration",
	Long: `View hookctl configuration.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (HOOKCTL_*, CLAUDE_HOOKS_BYPASS, ANTHROPIC_API_KEY)
  3. Project config (.hookctl/config.yaml)
  4. Home config (~/.config/hookctl/config.yaml)
  5. Defaults

Environment variables:
  HOOKCTL_CONFIG            - Explicit project config path
  CLAUDE_HOOKS_BYPASS       - "1" allows every tool call
  HOOKCTL_VERBOSE           - Debug logging on stderr (true/1)
  HOOKCTL_TRACKER_COMMAND   - Task tracker CLI (default: bd)
  HOOKCTL_RESEARCH_BACKEND  - Research backend: cli or api (default: cli)
  HOOKCTL_RESEARCH_COMMAND  - Agent CLI for the cli backend (default: claude)
  HOOKCTL_RESEARCH_MODEL    - Model for the api backend
  HOOKCTL_RESEARCH_TIMEOUT  - Per-package research bound (e.g. 300s)
  HOOKCTL_CACHE_FILE        - Research cache file
  HOOKCTL_HOOKS_DIR         - Hooks directory install links into
  ANTHROPIC_API_KEY         - API key for the api backend

Examples:
  hookctl config --show
  hookctl config --show -o json`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configShow, "show", false, "Show resolved configuration with sources")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if !configShow {
		return cmd.Help()
	}

	resolved := config.Resolve(verbose)
	w := cmd.OutOrStdout()

	if output == "json" {
		data, err := json.MarshalIndent(resolved, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	fmt.Fprintln(w, "hookctl Configuration")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintln(w)

	home, project := config.Paths()
	fmt.Fprintln(w, "Config files:")
	printConfigFile(w, "Home:   ", home)
	printConfigFile(w, "Project:", project)
	if cfgErr != nil {
		fmt.Fprintf(w, "  ⚠ %v\n", cfgErr)
	}
	if _, err := buildGate(cfg); err != nil {
		fmt.Fprintf(w, "  ⚠ %v\n", err)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Resolved values:")
	fmt.Fprintf(w, "  verbose:                   %v  (from %s)\n", resolved.Verbose.Value, resolved.Verbose.Source)
	fmt.Fprintf(w, "  bypass:                    %v  (from %s)\n", resolved.Bypass.Value, resolved.Bypass.Source)
	fmt.Fprintf(w, "  gate.rules:                %v  (from %s)\n", resolved.GateRules.Value, resolved.GateRules.Source)
	fmt.Fprintf(w, "  session.tracker_command:   %v  (from %s)\n", resolved.TrackerCommand.Value, resolved.TrackerCommand.Source)
	fmt.Fprintf(w, "  versions.backend:          %v  (from %s)\n", resolved.Backend.Value, resolved.Backend.Source)
	fmt.Fprintf(w, "  versions.research_command: %v  (from %s)\n", resolved.ResearchCommand.Value, resolved.ResearchCommand.Source)
	fmt.Fprintf(w, "  versions.cache_file:       %v  (from %s)\n", resolved.CacheFile.Value, resolved.CacheFile.Source)
	fmt.Fprintf(w, "  install.target_dir:        %v  (from %s)\n", resolved.HooksDir.Value, resolved.HooksDir.Source)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables (if set):")
	anySet := false
	for _, name := range config.EnvVars() {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		if name == "ANTHROPIC_API_KEY" {
			v = maskSecret(v)
		}
		fmt.Fprintf(w, "  %s=%s\n", name, v)
		anySet = true
	}
	if !anySet {
		fmt.Fprintln(w, "  (none set)")
	}
	return nil
}

func printConfigFile(w io.Writer, label, path string) {
	if path == "" {
		fmt.Fprintf(w, "  ✗ %s (unknown)\n", label)
		return
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "  ✓ %s %s\n", label, path)
	} else {
		fmt.Fprintf(w, "  ✗ %s %s (not found)\n", label, path)
	}
}

// maskSecret keeps the first four characters of a secret.
func maskSecret(v string) string {
	if len(v) <= 8 {
		return "****"
	}
	return v[:4] + "****"
}
