package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boshu2/claude-hooks/internal/config"
	"github.com/boshu2/claude-hooks/internal/hookio"
	"github.com/boshu2/claude-hooks/internal/storage"
	"github.com/boshu2/claude-hooks/internal/versions"
)

// versionCheckExitCode makes the host show the report to the model and user.
const versionCheckExitCode = 2

var versionCheckCmd = &cobra.Command{
	Use:   "version-check",
	Short: "PostToolUse hook: flag major-version gaps after package installs",
	Long: `Read a PostToolUse event on stdin. For npm, yarn, pnpm, bun and pip install
commands, compare each pinned package's major version against the registry's
latest release. For every gap, attach a breaking-changes brief (cached per
package and version pair) and print the report as additional context.

Progress lines go to stderr. Exits 2 when a report is printed, 0 otherwise.

Research backends (versions.backend):
  cli  run 'claude -p' headless (default)
  api  call the Anthropic Messages API (needs ANTHROPIC_API_KEY)`,
	Args: cobra.NoArgs,
	RunE: runVersionCheck,
}

func init() {
	rootCmd.AddCommand(versionCheckCmd)
}

// newChecker wires a checker from configuration.
func newChecker(vc config.VersionsConfig) *versions.Checker {
	researcher, err := versions.NewResearcher(vc.Backend, vc.ResearchCommand, vc.APIKey, vc.Model, vc.ResearchTimeout)
	if err != nil {
		logger.Warn("research backend unavailable, using cli", zap.Error(err))
		researcher = versions.NewCLIResearcher(vc.ResearchCommand, vc.ResearchTimeout)
	}

	return &versions.Checker{
		Registries: map[versions.RegistryKind]versions.Registry{
			versions.RegistryNPM:  versions.NewHTTPRegistry(versions.RegistryNPM, vc.NPMRegistry, vc.LookupTimeout, nil),
			versions.RegistryPyPI: versions.NewHTTPRegistry(versions.RegistryPyPI, vc.PyPIRegistry, vc.LookupTimeout, nil),
		},
		Cache:       storage.NewFileCache(vc.CacheFile),
		Researcher:  researcher,
		MaxResearch: vc.MaxResearch,
		Logger:      logger,
	}
}

func runVersionCheck(cmd *cobra.Command, args []string) error {
	ev := readEvent(cmd)
	if _, ok := ev.(hookio.RunEvent); !ok {
		return nil
	}

	checker := newChecker(cfg.Versions)
	checker.Progress = cmd.ErrOrStderr()

	report, err := checker.Check(cmd.Context(), ev, workDir)
	if err != nil {
		logger.Warn("version check incomplete", zap.Error(err))
	}
	if report == nil {
		return nil
	}

	if err := hookio.Write(cmd.OutOrStdout(), report.Response()); err != nil {
		logger.Warn("write report", zap.Error(err))
		return nil
	}
	return &exitError{code: versionCheckExitCode}
}
