package gate

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchKind selects how a rule's pattern is applied.
type MatchKind string

const (
	// MatchSubstring is an exact, case-sensitive substring test. Package and
	// import names use it.
	MatchSubstring MatchKind = "substring"

	// MatchRegex is a regular expression. Model identifiers use it with
	// IgnoreCase set.
	MatchRegex MatchKind = "regex"
)

// Rule is one (pattern, scope, reason) triple.
type Rule struct {
	Name       string    `yaml:"name" json:"name"`
	Pattern    string    `yaml:"pattern" json:"pattern"`
	Match      MatchKind `yaml:"match" json:"match"`
	IgnoreCase bool      `yaml:"ignore_case" json:"ignore_case"`
	Reason     string    `yaml:"reason" json:"reason"`

	// Tools restricts the rule to these tool names. Empty means every tool
	// the gate scans.
	Tools []string `yaml:"tools,omitempty" json:"tools,omitempty"`

	// SkipExtensions adds per-rule file extension exclusions on top of the
	// gate-wide documentation set.
	SkipExtensions []string `yaml:"skip_extensions,omitempty" json:"skip_extensions,omitempty"`

	re *regexp.Regexp
}

// compile validates the rule and prepares its matcher.
func (r *Rule) compile() error {
	if r.Pattern == "" {
		return fmt.Errorf("rule %q: %w", r.Name, ErrEmptyPattern)
	}
	if r.Reason == "" {
		return fmt.Errorf("rule %q: %w", r.Name, ErrEmptyReason)
	}
	if len(r.SkipExtensions) > 0 {
		exts := make([]string, len(r.SkipExtensions))
		for i, e := range r.SkipExtensions {
			exts[i] = normalizeExt(e)
		}
		r.SkipExtensions = exts
	}
	switch r.Match {
	case "", MatchSubstring:
		r.Match = MatchSubstring
		if r.IgnoreCase {
			r.re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(r.Pattern))
		}
	case MatchRegex:
		expr := r.Pattern
		if r.IgnoreCase {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("rule %q: %w: %v", r.Name, ErrInvalidPattern, err)
		}
		r.re = re
	default:
		return fmt.Errorf("rule %q: %w: %q", r.Name, ErrUnknownMatch, r.Match)
	}
	return nil
}

// Matches reports whether text triggers the rule.
func (r *Rule) Matches(text string) bool {
	if r.re != nil {
		return r.re.MatchString(text)
	}
	return strings.Contains(text, r.Pattern)
}

func (r *Rule) appliesTo(tool, ext string) bool {
	if len(r.Tools) > 0 && !containsFold(r.Tools, tool) {
		return false
	}
	if ext != "" && containsFold(r.SkipExtensions, ext) {
		return false
	}
	return true
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// DefaultRules returns the built-in deprecation rules in evaluation order.
// Each call returns a fresh slice.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "google-generativeai-package",
			Pattern: "google-generativeai",
			Match:   MatchSubstring,
			Reason:  "google-generativeai is deprecated and no longer maintained. Use the google-genai package instead (pip install google-genai).",
		},
		{
			Name:    "google-generativeai-import",
			Pattern: "google.generativeai",
			Match:   MatchSubstring,
			Reason:  "The google.generativeai module is deprecated. Use google-genai instead: `from google import genai`.",
		},
		{
			Name:    "google-generative-ai-js",
			Pattern: "@google/generative-ai",
			Match:   MatchSubstring,
			Reason:  "@google/generative-ai is deprecated. Use @google/genai instead (npm install @google/genai).",
		},
		{
			Name:       "gemini-retired-models",
			Pattern:    `gemini-1\.0|gemini-1\.5|gemini-pro(-vision)?\b`,
			Match:      MatchRegex,
			IgnoreCase: true,
			Reason:     "Gemini 1.x models are retired. Use a current model such as gemini-2.5-flash or gemini-2.5-pro.",
		},
		{
			Name:       "gemini-2.0-flash",
			Pattern:    `gemini-2\.0-flash`,
			Match:      MatchRegex,
			IgnoreCase: true,
			Reason:     "gemini-2.0-flash is deprecated. Use gemini-2.5-flash instead.",
		},
	}
}
