package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/boshu2/claude-hooks/internal/execx"
	"github.com/boshu2/claude-hooks/internal/install"
	"github.com/boshu2/claude-hooks/internal/versions"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the hookctl installation",
	Long: `Run health checks on the hookctl installation.

Required checks fail the command; optional collaborators (task tracker,
research backend) are reported as warnings.

Examples:
  hookctl doctor
  hookctl doctor -o json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type doctorCheck struct {
	Name     string `json:"name"`
	Status   string `json:"status"` // "pass", "warn", "fail"
	Detail   string `json:"detail"`
	Required bool   `json:"required"`
}

type doctorOutput struct {
	Checks  []doctorCheck `json:"checks"`
	Result  string        `json:"result"` // "HEALTHY", "UNHEALTHY"
	Summary string        `json:"summary"`
}

// lookPath is swapped in tests.
var lookPath = execx.Available

func gatherDoctorChecks() []doctorCheck {
	return []doctorCheck{
		{Name: "hookctl", Status: "pass", Detail: "v" + version, Required: true},
		checkOnPath(),
		checkGateRules(),
		checkHookLinks(cfg.Install.TargetDir),
		checkHookCoverage(cfg.Install.SettingsPath, cfg.Install.TargetDir),
		checkTracker(),
		checkResearchBackend(),
	}
}

func doctorStatusIcon(status string) string {
	switch status {
	case "pass":
		return "✓"
	case "warn":
		return "!"
	case "fail":
		return "✗"
	}
	return "?"
}

func renderDoctorTable(w io.Writer, out doctorOutput) {
	fmt.Fprintln(w, "hookctl doctor")
	fmt.Fprintln(w, strings.Repeat("─", 14))

	maxName := 0
	for _, c := range out.Checks {
		if len(c.Name) > maxName {
			maxName = len(c.Name)
		}
	}
	for _, c := range out.Checks {
		padding := strings.Repeat(" ", maxName-len(c.Name))
		fmt.Fprintf(w, "%s %s%s  %s\n", doctorStatusIcon(c.Status), c.Name, padding, c.Detail)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, out.Summary)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := computeResult(gatherDoctorChecks())
	w := cmd.OutOrStdout()

	if output == "json" {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal doctor output: %w", err)
		}
		fmt.Fprintln(w, string(data))
	} else {
		renderDoctorTable(w, out)
	}

	if hasRequiredFailure(out.Checks) {
		return fmt.Errorf("doctor failed: one or more required checks did not pass")
	}
	return nil
}

// checkOnPath verifies the wrapper scripts can find the binary.
func checkOnPath() doctorCheck {
	if lookPath("hookctl") {
		return doctorCheck{Name: "PATH", Status: "pass", Detail: "hookctl found", Required: true}
	}
	return doctorCheck{
		Name:     "PATH",
		Status:   "fail",
		Detail:   "hookctl not on PATH; hook scripts will exit silently",
		Required: true,
	}
}

func checkGateRules() doctorCheck {
	g, err := buildGate(cfg)
	switch {
	case g == nil:
		return doctorCheck{Name: "Gate Rules", Status: "fail", Detail: err.Error(), Required: true}
	case err != nil:
		return doctorCheck{Name: "Gate Rules", Status: "warn", Detail: err.Error()}
	case cfg.Bypass:
		return doctorCheck{Name: "Gate Rules", Status: "warn", Detail: "bypassed by CLAUDE_HOOKS_BYPASS=1"}
	}
	return doctorCheck{Name: "Gate Rules", Status: "pass", Detail: fmt.Sprintf("%d rules active", len(g.Rules()))}
}

// checkHookLinks verifies every bundled directory is linked into targetDir.
func checkHookLinks(targetDir string) doctorCheck {
	var missing []string
	for _, name := range install.BundleDirs() {
		info, err := os.Stat(filepath.Join(targetDir, name))
		if err != nil || !info.IsDir() {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return doctorCheck{Name: "Hook Links", Status: "pass", Detail: targetDir, Required: true}
	}
	return doctorCheck{
		Name:     "Hook Links",
		Status:   "fail",
		Detail:   fmt.Sprintf("missing %s; run 'hookctl install'", strings.Join(missing, ", ")),
		Required: true,
	}
}

func checkHookCoverage(settingsPath, hooksDir string) doctorCheck {
	coverage, err := hookCoverage(settingsPath, hooksDir)
	if err != nil {
		return doctorCheck{Name: "Hook Coverage", Status: "fail", Detail: err.Error(), Required: true}
	}

	installed := 0
	for _, c := range coverage {
		if c.Installed {
			installed++
		}
	}
	switch {
	case installed == 0:
		return doctorCheck{Name: "Hook Coverage", Status: "fail", Detail: "no hooks registered; run 'hookctl install'", Required: true}
	case installed < len(coverage):
		return doctorCheck{
			Name:     "Hook Coverage",
			Status:   "warn",
			Detail:   fmt.Sprintf("partial coverage: %d/%d events; run 'hookctl install'", installed, len(coverage)),
			Required: true,
		}
	}
	return doctorCheck{
		Name:     "Hook Coverage",
		Status:   "pass",
		Detail:   fmt.Sprintf("full coverage: %d/%d events", installed, len(coverage)),
		Required: true,
	}
}

func checkTracker() doctorCheck {
	name := cfg.Session.TrackerCommand
	if lookPath(name) {
		return doctorCheck{Name: "Task Tracker", Status: "pass", Detail: name + " available"}
	}
	return doctorCheck{
		Name:   "Task Tracker",
		Status: "warn",
		Detail: fmt.Sprintf("%s not found (optional, session digest shows a tip)", name),
	}
}

func checkResearchBackend() doctorCheck {
	vc := cfg.Versions
	switch vc.Backend {
	case versions.BackendAPI:
		if vc.APIKey == "" {
			return doctorCheck{Name: "Research", Status: "warn", Detail: "api backend needs ANTHROPIC_API_KEY"}
		}
		return doctorCheck{Name: "Research", Status: "pass", Detail: "api (" + vc.Model + ")"}
	case versions.BackendCLI, "":
		if lookPath(vc.ResearchCommand) {
			return doctorCheck{Name: "Research", Status: "pass", Detail: "cli (" + vc.ResearchCommand + ")"}
		}
		return doctorCheck{
			Name:   "Research",
			Status: "warn",
			Detail: fmt.Sprintf("%s not found (optional, version diffs are reported without briefs)", vc.ResearchCommand),
		}
	}
	return doctorCheck{Name: "Research", Status: "warn", Detail: fmt.Sprintf("unknown backend %q", vc.Backend)}
}

func hasRequiredFailure(checks []doctorCheck) bool {
	for _, c := range checks {
		if c.Required && c.Status == "fail" {
			return true
		}
	}
	return false
}

func countCheckStatuses(checks []doctorCheck) (passes, fails, warns int) {
	for _, c := range checks {
		switch c.Status {
		case "pass":
			passes++
		case "fail":
			fails++
		case "warn":
			warns++
		}
	}
	return passes, fails, warns
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func buildDoctorSummary(passes, fails, warns, total int) string {
	parts := []string{fmt.Sprintf("%d/%d checks passed", passes, total)}
	if warns > 0 {
		parts = append(parts, plural(warns, "warning"))
	}
	if fails > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", fails))
	}
	return strings.Join(parts, ", ")
}

func computeResult(checks []doctorCheck) doctorOutput {
	passes, fails, warns := countCheckStatuses(checks)
	result := "HEALTHY"
	if hasRequiredFailure(checks) {
		result = "UNHEALTHY"
	}
	return doctorOutput{
		Checks:  checks,
		Result:  result,
		Summary: buildDoctorSummary(passes, fails, warns, len(checks)),
	}
}
