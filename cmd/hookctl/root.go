package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boshu2/claude-hooks/internal/config"
	"github.com/boshu2/claude-hooks/internal/hookio"
	"github.com/boshu2/claude-hooks/internal/logging"
)

var (
	// Global flags
	verbose bool
	output  string
	cfgFile string

	// Set in PersistentPreRunE.
	cfg     *config.Config
	cfgErr  error
	logger  = zap.NewNop()
	workDir string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hookctl",
	Short: "Hooks for AI coding assistant sessions",
	Long: `hookctl implements the hooks an AI coding assistant runs around tool calls.

Hook Commands (read the host's JSON event on stdin):
  gate             PreToolUse: deny deprecated SDKs and retired model IDs
  lock-clean       PreToolUse: remove a stale .git/index.lock
  session-context  SessionStart: print the task tracker digest
  version-check    PostToolUse: flag major-version gaps after installs

Setup Commands:
  install          Link the bundled hooks and register them
  show             Show registered hook events
  doctor           Check the installation
  rules            List the active policy rules
  config           Show resolved configuration

Set CLAUDE_HOOKS_BYPASS=1 to let every tool call through.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		syncConfigFlagToEnv()

		cfg, cfgErr = config.Load(&config.Config{Verbose: verbose})
		if cfg == nil {
			cfg = config.Default()
		}

		l, err := newLogger(cfg.Verbose)
		if err != nil {
			// Hooks must still exit 0; run without logs.
			l = zap.NewNop()
		}
		logger = l
		if cfgErr != nil {
			logger.Warn("configuration partially applied", zap.Error(cfgErr))
		}

		if workDir, err = os.Getwd(); err != nil {
			logger.Debug("cannot determine working directory", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync() //nolint:errcheck // stderr sync fails on some terminals
	},
}

// newLogger is swapped in tests.
var newLogger = logging.New

// exitError ends the process with a specific status and no error output.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the command tree and maps the result to a process status.
func run(args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err) //nolint:errcheck // best-effort
	return 1
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format for setup commands (table, json)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: .hookctl/config.yaml)")
}

func syncConfigFlagToEnv() {
	path := strings.TrimSpace(cfgFile)
	if path == "" {
		return
	}
	_ = os.Setenv("HOOKCTL_CONFIG", path)
}

// readEvent decodes the host event on stdin. Undecodable input yields an
// OtherEvent so hooks fail open.
func readEvent(cmd *cobra.Command) hookio.Event {
	ev, err := hookio.Read(cmd.InOrStdin())
	if err != nil {
		logger.Debug("ignoring undecodable hook input", zap.Error(err))
	}
	if ev == nil {
		return hookio.OtherEvent{}
	}
	return ev
}
