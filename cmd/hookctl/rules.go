package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boshu2/claude-hooks/internal/config"
	"github.com/boshu2/claude-hooks/internal/formatter"
	"github.com/boshu2/claude-hooks/internal/gate"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the active policy rules",
	Long: `List the policy rules the gate evaluates, in order. The first rule that
matches a tool call decides the denial reason.

Rules come from the built-in set unless gate.rules in a config file replaces
them; gate.extra_rules are appended. An invalid configured rule is reported
here and the gate falls back to the built-in rules.

Examples:
  hookctl rules
  hookctl rules -o json`,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

// gateRules converts configured rules; empty config means the built-ins.
func gateRules(gc config.GateConfig) []gate.Rule {
	var rules []gate.Rule
	if len(gc.Rules) > 0 {
		rules = convertRules(gc.Rules)
	} else {
		rules = gate.DefaultRules()
	}
	return append(rules, convertRules(gc.ExtraRules)...)
}

func convertRules(in []config.RuleConfig) []gate.Rule {
	out := make([]gate.Rule, 0, len(in))
	for _, rc := range in {
		out = append(out, gate.Rule{
			Name:           rc.Name,
			Pattern:        rc.Pattern,
			Match:          gate.MatchKind(rc.Match),
			IgnoreCase:     rc.IgnoreCase,
			Reason:         rc.Reason,
			Tools:          rc.Tools,
			SkipExtensions: rc.SkipExtensions,
		})
	}
	return out
}

// buildGate constructs the gate from configuration. When the configured
// rules are invalid it returns a gate with the built-in rules and the
// configuration error.
func buildGate(c *config.Config) (*gate.Gate, error) {
	opts := gate.Options{
		Bypass:             c.Bypass,
		Tools:              c.Gate.Tools,
		ExcludedExtensions: c.Gate.ExcludedExtensions,
		InstallPattern:     c.Gate.InstallPattern,
		Rules:              gateRules(c.Gate),
	}
	g, err := gate.New(opts)
	if err == nil {
		return g, nil
	}

	opts.Rules = gate.DefaultRules()
	opts.InstallPattern = ""
	fallback, ferr := gate.New(opts)
	if ferr != nil {
		return nil, fmt.Errorf("built-in rules: %w", ferr)
	}
	return fallback, fmt.Errorf("invalid gate configuration, using built-in rules: %w", err)
}

func runRules(cmd *cobra.Command, args []string) error {
	g, err := buildGate(cfg)
	if g == nil {
		return err
	}
	if err != nil {
		logger.Warn("gate configuration rejected", zap.Error(err))
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %v\n", err)
	}

	rules := g.Rules()
	w := cmd.OutOrStdout()
	if output == "json" {
		data, err := json.MarshalIndent(rules, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal rules: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	tbl := formatter.NewTable(w, "#", "NAME", "MATCH", "PATTERN", "TOOLS")
	tbl.SetMaxWidth(3, 48)
	for i, r := range rules {
		match := string(r.Match)
		if r.IgnoreCase {
			match += " (i)"
		}
		tools := "all"
		if len(r.Tools) > 0 {
			tools = strings.Join(r.Tools, ",")
		}
		tbl.AddRow(fmt.Sprintf("%d", i+1), r.Name, match, r.Pattern, tools)
	}
	if err := tbl.Render(); err != nil {
		return err
	}
	if cfg.Bypass {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "⚠ CLAUDE_HOOKS_BYPASS=1: every tool call is allowed")
	}
	return nil
}
