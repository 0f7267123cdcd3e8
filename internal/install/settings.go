package install

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LoadSettings reads settings.json as a generic map so unrelated keys
// survive a rewrite. A missing file is an empty map.
func LoadSettings(path string) (map[string]any, error) {
	raw := make(map[string]any)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return raw, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return raw, nil
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse existing settings: %w", err)
	}
	return raw, nil
}

// HooksMap returns the "hooks" object of raw settings, or nil.
func HooksMap(raw map[string]any) map[string]any {
	m, _ := raw["hooks"].(map[string]any)
	return m
}

// Merger replaces hookctl-managed groups in settings and keeps the rest.
type Merger struct {
	// HooksDir is the link target; commands under it are managed.
	HooksDir string
}

// IsManaged reports whether a hook command belongs to hookctl.
func (m Merger) IsManaged(cmd string) bool {
	if strings.HasPrefix(strings.TrimSpace(cmd), "hookctl ") {
		return true
	}
	if m.HooksDir == "" {
		return false
	}
	normalized := filepath.ToSlash(cmd)
	prefix := filepath.ToSlash(filepath.Clean(m.HooksDir))
	for _, dir := range BundleDirs() {
		if strings.Contains(normalized, prefix+"/"+dir+"/") {
			return true
		}
	}
	return false
}

// Merge writes config's groups into raw["hooks"], dropping previously
// installed hookctl groups for each event. It returns the number of events
// that received groups.
func (m Merger) Merge(raw map[string]any, config *HooksConfig) int {
	hooksMap := make(map[string]any)
	for k, v := range HooksMap(raw) {
		hooksMap[k] = v
	}

	installed := 0
	for _, event := range EventNames() {
		newGroups := config.GetEventGroups(event)
		if len(newGroups) == 0 {
			continue
		}
		groups := make([]any, 0, len(newGroups))
		for _, g := range m.foreignGroups(hooksMap, event) {
			groups = append(groups, g)
		}
		for _, g := range newGroups {
			groups = append(groups, hookGroupToMap(g))
		}
		hooksMap[event] = groups
		installed++
	}
	raw["hooks"] = hooksMap
	return installed
}

// Installed reports whether any hookctl command is registered for event.
func (m Merger) Installed(hooksMap map[string]any, event string) bool {
	groups, _ := hooksMap[event].([]any)
	for _, g := range groups {
		if group, ok := g.(map[string]any); ok && m.groupIsManaged(group) {
			return true
		}
	}
	return false
}

func (m Merger) foreignGroups(hooksMap map[string]any, event string) []map[string]any {
	result := make([]map[string]any, 0)
	groups, _ := hooksMap[event].([]any)
	for _, g := range groups {
		group, ok := g.(map[string]any)
		if !ok {
			continue
		}
		if !m.groupIsManaged(group) {
			result = append(result, group)
		}
	}
	return result
}

func (m Merger) groupIsManaged(group map[string]any) bool {
	hooks, ok := group["hooks"].([]any)
	if !ok {
		return false
	}
	for _, h := range hooks {
		hook, ok := h.(map[string]any)
		if !ok {
			continue
		}
		if cmd, ok := hook["command"].(string); ok && m.IsManaged(cmd) {
			return true
		}
	}
	return false
}

// hookGroupToMap converts a HookGroup to a map for JSON serialization.
func hookGroupToMap(g HookGroup) map[string]any {
	hooks := make([]any, len(g.Hooks))
	for i, h := range g.Hooks {
		entry := map[string]any{
			"type":    h.Type,
			"command": h.Command,
		}
		if h.Timeout > 0 {
			entry["timeout"] = h.Timeout
		}
		hooks[i] = entry
	}
	result := map[string]any{
		"hooks": hooks,
	}
	if g.Matcher != "" {
		result["matcher"] = g.Matcher
	}
	return result
}

// CountGroupHooks counts the commands across a raw group slice.
func CountGroupHooks(groups []any) int {
	count := 0
	for _, g := range groups {
		gm, ok := g.(map[string]any)
		if !ok {
			continue
		}
		if hs, ok := gm["hooks"].([]any); ok {
			count += len(hs)
		}
	}
	return count
}

// Backup copies an existing settings file next to itself with a timestamp
// suffix. It returns "" when there was nothing to back up.
func Backup(path string, now time.Time) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read settings for backup: %w", err)
	}
	backupPath := fmt.Sprintf("%s.backup.%s", path, now.Format("20060102-150405"))
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	return backupPath, nil
}

// MarshalSettings renders settings the way they are written to disk.
func MarshalSettings(raw map[string]any) ([]byte, error) {
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteSettings writes raw to path, creating the parent directory.
func WriteSettings(path string, raw map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	data, err := MarshalSettings(raw)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
