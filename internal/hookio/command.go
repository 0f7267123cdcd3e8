package hookio

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	cdPrefix  = regexp.MustCompile(`^cd\s+([^\s&]+)\s*&&\s*`)
	envAssign = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)
)

// SplitCd strips a leading "cd DIR &&" from command and returns the
// directory the rest of the command runs in. Relative directories resolve
// against cwd.
func SplitCd(command, cwd string) (dir, rest string) {
	command = strings.TrimSpace(command)
	m := cdPrefix.FindStringSubmatchIndex(command)
	if m == nil {
		return cwd, command
	}
	target := command[m[2]:m[3]]
	if !filepath.IsAbs(target) {
		target = filepath.Join(cwd, target)
	}
	return filepath.Clean(target), command[m[1]:]
}

// ProgramName returns the base name of the first word of command, ignoring
// leading VAR=value assignments.
func ProgramName(command string) string {
	for _, field := range strings.Fields(command) {
		if envAssign.MatchString(field) {
			continue
		}
		return filepath.Base(field)
	}
	return ""
}
