package versions

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Manager is a package manager recognized in install commands.
type Manager string

const (
	NPM  Manager = "npm"
	Yarn Manager = "yarn"
	PNPM Manager = "pnpm"
	Bun  Manager = "bun"
	Pip  Manager = "pip"
)

// RegistryKind names the registry a manager installs from.
type RegistryKind string

const (
	RegistryNPM  RegistryKind = "npm"
	RegistryPyPI RegistryKind = "pypi"
)

type managerPattern struct {
	manager Manager
	re      *regexp.Regexp
}

// managers is checked in order; the first match wins.
var managers = []managerPattern{
	{NPM, regexp.MustCompile(`\bnpm\s+(install|i|add)\b\s*`)},
	{Yarn, regexp.MustCompile(`\byarn\s+add\b\s*`)},
	{PNPM, regexp.MustCompile(`\bpnpm\s+(add|install)\b\s*`)},
	{Bun, regexp.MustCompile(`\bbun\s+(add|install)\b\s*`)},
	{Pip, regexp.MustCompile(`\bpip\s+install\b\s*`)},
}

var (
	requirementsFlag = regexp.MustCompile(`(?:^|\s)-r\s+(\S+)`)
	specifier        = regexp.MustCompile(`[@=<>~!\[].*$`)
)

// Detect returns the first package manager whose install form appears in
// command.
func Detect(command string) (Manager, bool) {
	for _, m := range managers {
		if m.re.MatchString(command) {
			return m.manager, true
		}
	}
	return "", false
}

// Registry returns where m resolves packages.
func (m Manager) Registry() RegistryKind {
	if m == Pip {
		return RegistryPyPI
	}
	return RegistryNPM
}

// CommandPackages returns the package names an install command names
// explicitly, with flags dropped and version specifiers stripped.
func CommandPackages(command string, m Manager) []string {
	var pattern *regexp.Regexp
	for _, mp := range managers {
		if mp.manager == m {
			pattern = mp.re
			break
		}
	}
	if pattern == nil {
		return nil
	}
	loc := pattern.FindStringIndex(command)
	if loc == nil {
		return nil
	}
	args := command[loc[1]:]
	// Chained commands end the argument list.
	if i := strings.IndexAny(args, "&|;"); i >= 0 {
		args = args[:i]
	}

	var names []string
	for _, tok := range strings.Fields(args) {
		if strings.HasPrefix(tok, "-") {
			continue
		}
		if name := packageName(tok); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// packageName strips a version specifier, keeping an npm scope's leading @.
func packageName(tok string) string {
	if strings.HasPrefix(tok, "@") {
		if name := specifier.ReplaceAllString(tok[1:], ""); name != "" {
			return "@" + name
		}
		return ""
	}
	return specifier.ReplaceAllString(tok, "")
}

// RequirementsFile returns the file named by a pip -r flag, resolved against
// dir, or "" when the command has none.
func RequirementsFile(command, dir string) string {
	m := requirementsFlag.FindStringSubmatch(command)
	if m == nil {
		return ""
	}
	path := m[1]
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	return path
}
