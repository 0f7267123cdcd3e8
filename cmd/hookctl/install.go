package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/boshu2/claude-hooks/embedded"
	"github.com/boshu2/claude-hooks/internal/formatter"
	"github.com/boshu2/claude-hooks/internal/install"
)

var (
	installSourceDir  string
	installTarget     string
	installDryRun     bool
	installForce      bool
	installNoSettings bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Link the bundled hooks and register them",
	Long: `Link each bundled hook directory (session-start, pre-tool-use,
post-tool-use) into the hooks directory and register the hooks in the host
settings file.

The bundle comes from --source-dir, ./embedded/hooks, or the directory next
to the hookctl binary. When none holds a complete bundle, the copy embedded
in the binary is extracted first.

Existing links are refreshed; running install twice changes nothing. A file
that is not a link is left alone unless --force is given. Other hooks in the
settings file are preserved, and the previous file is backed up.

Examples:
  hookctl install
  hookctl install --dry-run
  hookctl install --source-dir ~/src/claude-hooks/embedded/hooks --force`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show registered hook events",
	Long:  `Show which host events have hookctl hooks registered in the settings file.`,
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(showCmd)

	installCmd.Flags().StringVar(&installSourceDir, "source-dir", "", "Directory holding the hook bundle")
	installCmd.Flags().StringVar(&installTarget, "target", "", "Hooks directory to link into (default: ~/.claude/hooks)")
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "Show what would be installed without making changes")
	installCmd.Flags().BoolVar(&installForce, "force", false, "Replace files that are not links")
	installCmd.Flags().BoolVar(&installNoSettings, "no-settings", false, "Link only; do not touch the settings file")
}

// sourceCandidates lists the places a bundle checkout may live.
func sourceCandidates(flag string) []string {
	candidates := []string{flag, filepath.Join(workDir, "embedded", "hooks")}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates, filepath.Join(dir, "hooks"), filepath.Join(dir, "..", "share", "hookctl", "hooks"))
	}
	return candidates
}

func runInstall(cmd *cobra.Command, args []string) error {
	target := cfg.Install.TargetDir
	if installTarget != "" {
		target = installTarget
	}
	settingsPath := cfg.Install.SettingsPath
	if installNoSettings {
		settingsPath = ""
	}

	opts := install.Options{
		SourceDir:    install.FindSourceDir(sourceCandidates(installSourceDir)...),
		TargetDir:    target,
		DataDir:      cfg.Install.DataDir,
		SettingsPath: settingsPath,
		Bundle:       embedded.Bundle(),
		Force:        installForce,
		DryRun:       installDryRun,
	}
	if installSourceDir != "" && opts.SourceDir == "" {
		return fmt.Errorf("%w: %s", install.ErrMissingBundle, installSourceDir)
	}

	res, err := install.Run(opts)
	w := cmd.OutOrStdout()
	if res != nil {
		if output == "json" {
			if jerr := writeInstallJSON(w, res); jerr != nil {
				return jerr
			}
		} else {
			renderInstall(w, res, opts)
		}
	}
	if err != nil {
		return fmt.Errorf("install: %w", err)
	}
	return nil
}

func writeInstallJSON(w io.Writer, res *install.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal install result: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func renderInstall(w io.Writer, res *install.Result, opts install.Options) {
	if opts.DryRun {
		fmt.Fprintln(w, "[dry-run] No changes made.")
		fmt.Fprintln(w)
	}
	if res.Extracted > 0 {
		fmt.Fprintf(w, "✓ Extracted %d files to %s\n", res.Extracted, res.SourceDir)
	}

	tbl := formatter.NewTable(w, "HOOK", "ACTION", "LINK")
	for _, l := range res.Links {
		tbl.AddRow(l.Name, string(l.Action), l.Path)
	}
	_ = tbl.Render() //nolint:errcheck // terminal output

	for _, l := range res.Links {
		if l.Action == install.LinkSkipped {
			fmt.Fprintf(w, "⚠ %s is not a link; rerun with --force to replace it\n", l.Path)
		}
	}

	if opts.SettingsPath == "" {
		return
	}
	fmt.Fprintln(w)
	if opts.DryRun {
		fmt.Fprintf(w, "Would register %d events in %s:\n", res.Events, opts.SettingsPath)
		_, _ = w.Write(res.Settings)
		return
	}
	if res.Backup != "" {
		fmt.Fprintf(w, "✓ Backed up settings to %s\n", res.Backup)
	}
	fmt.Fprintf(w, "✓ Registered %d events in %s\n", res.Events, opts.SettingsPath)
}

// eventCoverage is one host event's registration state.
type eventCoverage struct {
	Event     string `json:"event"`
	Hooks     int    `json:"hooks"`
	Installed bool   `json:"installed"`
}

// hookCoverage reads the settings file and reports hookctl coverage per event.
func hookCoverage(settingsPath, hooksDir string) ([]eventCoverage, error) {
	raw, err := install.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}
	hooksMap := install.HooksMap(raw)
	merger := install.Merger{HooksDir: hooksDir}

	events := install.EventNames()
	coverage := make([]eventCoverage, 0, len(events))
	for _, event := range events {
		groups, _ := hooksMap[event].([]any)
		coverage = append(coverage, eventCoverage{
			Event:     event,
			Hooks:     install.CountGroupHooks(groups),
			Installed: merger.Installed(hooksMap, event),
		})
	}
	return coverage, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	coverage, err := hookCoverage(cfg.Install.SettingsPath, cfg.Install.TargetDir)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if output == "json" {
		data, err := json.MarshalIndent(coverage, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal coverage: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	installed := 0
	tbl := formatter.NewTable(w, "EVENT", "HOOKS", "HOOKCTL")
	for _, c := range coverage {
		mark := "✗"
		if c.Installed {
			mark = "✓"
			installed++
		}
		tbl.AddRow(c.Event, fmt.Sprintf("%d", c.Hooks), mark)
	}
	if err := tbl.Render(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d/%d events installed\n", installed, len(coverage))
	if installed < len(coverage) {
		fmt.Fprintln(w, "Run 'hookctl install' for complete coverage.")
	}
	return nil
}
