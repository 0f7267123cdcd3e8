package versions

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Package is a dependency pinned in a manifest.
type Package struct {
	Name    string
	Version string
}

// Manifest is an ordered list of pinned packages.
type Manifest []Package

// Lookup returns the pinned version of name.
func (m Manifest) Lookup(name string) (string, bool) {
	for _, p := range m {
		if p.Name == name {
			return p.Version, true
		}
	}
	return "", false
}

// Select returns the entries for names, in the order given, skipping names
// the manifest does not pin.
func (m Manifest) Select(names []string) Manifest {
	var out Manifest
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		if v, ok := m.Lookup(n); ok {
			out = append(out, Package{Name: n, Version: v})
		}
	}
	return out
}

var localRefPrefixes = []string{"workspace:", "file:", "git:", "github:"}

var requirementLine = regexp.MustCompile(`^([A-Za-z0-9_.-]+)\s*([=<>~!]+)\s*([\d.]+)`)

// ReadPackageJSON parses dependencies and devDependencies from
// dir/package.json. A missing file is an empty manifest.
func ReadPackageJSON(dir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read package.json: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse package.json: invalid JSON")
	}

	var m Manifest
	seen := make(map[string]bool)
	doc := gjson.ParseBytes(data)
	for _, section := range []string{"dependencies", "devDependencies"} {
		doc.Get(section).ForEach(func(key, value gjson.Result) bool {
			name, version := key.String(), value.String()
			if value.Type != gjson.String || seen[name] || isLocalRef(version) {
				return true
			}
			seen[name] = true
			m = append(m, Package{Name: name, Version: version})
			return true
		})
	}
	return m, nil
}

func isLocalRef(version string) bool {
	for _, p := range localRefPrefixes {
		if strings.HasPrefix(version, p) {
			return true
		}
	}
	return false
}

// ReadRequirements parses name(op)version lines from a requirements file.
// Comments, blank lines and option lines are skipped. A missing file is an
// empty manifest.
func ReadRequirements(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open requirements: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	var m Manifest
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if match := requirementLine.FindStringSubmatch(line); match != nil {
			m = append(m, Package{Name: match[1], Version: match[3]})
		}
	}
	if err := scanner.Err(); err != nil {
		return m, fmt.Errorf("scan requirements: %w", err)
	}
	return m, nil
}
