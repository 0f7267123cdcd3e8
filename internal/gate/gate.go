package gate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/boshu2/claude-hooks/internal/hookio"
)

// InstallPattern recognizes package-install invocations. Only these commands
// are scanned.
const InstallPattern = `\b(npm|pnpm|yarn|bun|pip|pip3|uv|poetry|pipx)\s+(install|i|add)\b`

// DefaultTools are the tool names the gate scans.
func DefaultTools() []string {
	return []string{
		hookio.ToolWrite,
		hookio.ToolEdit,
		hookio.ToolMultiEdit,
		hookio.ToolNotebookEdit,
		hookio.ToolBash,
	}
}

// DefaultExcludedExtensions are documentation-like extensions whose content
// is never scanned.
func DefaultExcludedExtensions() []string {
	return []string{".md", ".mdx", ".markdown", ".txt", ".rst", ".adoc"}
}

// Options configures a Gate. Zero-valued fields fall back to the defaults.
// Tool names match case-insensitively, as in Rule.Tools.
type Options struct {
	Bypass             bool
	Tools              []string
	ExcludedExtensions []string
	InstallPattern     string
	Rules              []Rule
}

// Decision is the outcome of one evaluation. The zero value allows.
type Decision struct {
	Denied bool
	Rule   string
	Reason string
}

// Allowed reports whether the call may proceed.
func (d Decision) Allowed() bool { return !d.Denied }

// Gate evaluates invocation events against an ordered rule list.
type Gate struct {
	bypass   bool
	tools    map[string]bool
	excluded map[string]bool
	install  *regexp.Regexp
	rules    []Rule
}

// New validates opts and builds a Gate. Rules are copied.
func New(opts Options) (*Gate, error) {
	g := &Gate{
		bypass:   opts.Bypass,
		tools:    make(map[string]bool),
		excluded: make(map[string]bool),
	}

	tools := opts.Tools
	if len(tools) == 0 {
		tools = DefaultTools()
	}
	for _, t := range tools {
		g.tools[strings.ToLower(t)] = true
	}

	exts := opts.ExcludedExtensions
	if len(exts) == 0 {
		exts = DefaultExcludedExtensions()
	}
	for _, e := range exts {
		g.excluded[normalizeExt(e)] = true
	}

	pattern := opts.InstallPattern
	if pattern == "" {
		pattern = InstallPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("install pattern: %w: %v", ErrInvalidPattern, err)
	}
	g.install = re

	rules := opts.Rules
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	g.rules = make([]Rule, len(rules))
	copy(g.rules, rules)
	for i := range g.rules {
		if err := g.rules[i].compile(); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Rules returns a copy of the compiled rule list in evaluation order.
func (g *Gate) Rules() []Rule {
	out := make([]Rule, len(g.rules))
	copy(out, g.rules)
	return out
}

// IsInstallCommand reports whether command is a package install.
func (g *Gate) IsInstallCommand(command string) bool {
	return g.install.MatchString(command)
}

// Evaluate decides allow or deny for one event.
func (g *Gate) Evaluate(ev hookio.Event) Decision {
	if g.bypass {
		return Decision{}
	}
	if ev == nil {
		return Decision{}
	}

	tool := ev.Meta().ToolName
	if !g.tools[strings.ToLower(tool)] {
		return Decision{}
	}

	text, ext, ok := g.scope(ev)
	if !ok || strings.TrimSpace(text) == "" {
		return Decision{}
	}

	for i := range g.rules {
		r := &g.rules[i]
		if !r.appliesTo(tool, ext) {
			continue
		}
		if r.Matches(text) {
			return Decision{Denied: true, Rule: r.Name, Reason: r.Reason}
		}
	}
	return Decision{}
}

// scope extracts the text to scan and the target file extension. ok is false
// when the event must not be scanned at all.
func (g *Gate) scope(ev hookio.Event) (text, ext string, ok bool) {
	switch e := ev.(type) {
	case hookio.WriteEvent:
		ext = normalizeExt(filepath.Ext(e.FilePath))
		if g.excluded[ext] {
			return "", "", false
		}
		return e.Content, ext, true
	case hookio.EditEvent:
		ext = normalizeExt(filepath.Ext(e.FilePath))
		if g.excluded[ext] {
			return "", "", false
		}
		return e.NewText, ext, true
	case hookio.RunEvent:
		if !g.IsInstallCommand(e.Command) {
			return "", "", false
		}
		return e.Command, "", true
	default:
		return "", "", false
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
