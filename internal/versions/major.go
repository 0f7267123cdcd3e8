package versions

import (
	"regexp"
	"strconv"
)

var digits = regexp.MustCompile(`\d+`)

// Major returns the first run of digits in version, so "^14.2.0", "~14",
// ">=14.0" and "14.0.0" all report 14.
func Major(version string) (int, bool) {
	s := digits.FindString(version)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
