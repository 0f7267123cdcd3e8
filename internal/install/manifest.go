// Package install places the bundled hook wrappers where the host looks for
// them and registers them in the host's settings file.
package install

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// HooksDirPlaceholder is replaced with the link target directory in manifest
// commands.
const HooksDirPlaceholder = "${HOOKS_DIR}"

// ErrNoHooksKey is returned for a manifest without a top-level "hooks" object.
var ErrNoHooksKey = errors.New("hooks manifest missing 'hooks' key")

// HookEntry represents a single hook command (e.g., {"type": "command", "command": "..."}).
type HookEntry struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

// HookGroup represents a hook group with optional matcher and a hooks array.
// Host format: {"matcher": "Write|Edit", "hooks": [{"type": "command", "command": "..."}]}
type HookGroup struct {
	Matcher string      `json:"matcher,omitempty"`
	Hooks   []HookEntry `json:"hooks"`
}

// BundleDirs are the bundled hook directories, one per host event, in install order.
func BundleDirs() []string {
	return []string{"session-start", "pre-tool-use", "post-tool-use"}
}

// EventNames returns the host events hookctl registers, in canonical order.
func EventNames() []string {
	return []string{"SessionStart", "PreToolUse", "PostToolUse"}
}

// HooksConfig is the hooks section hookctl contributes to settings.json.
type HooksConfig struct {
	SessionStart []HookGroup `json:"SessionStart,omitempty"`
	PreToolUse   []HookGroup `json:"PreToolUse,omitempty"`
	PostToolUse  []HookGroup `json:"PostToolUse,omitempty"`
}

func (c *HooksConfig) eventGroupPtr(event string) *[]HookGroup {
	switch event {
	case "SessionStart":
		return &c.SessionStart
	case "PreToolUse":
		return &c.PreToolUse
	case "PostToolUse":
		return &c.PostToolUse
	}
	return nil
}

// GetEventGroups returns the hook groups for a given event name.
func (c *HooksConfig) GetEventGroups(event string) []HookGroup {
	ptr := c.eventGroupPtr(event)
	if ptr == nil {
		return nil
	}
	return *ptr
}

// HookCount returns the number of commands registered for event.
func (c *HooksConfig) HookCount(event string) int {
	n := 0
	for _, g := range c.GetEventGroups(event) {
		n += len(g.Hooks)
	}
	return n
}

type hooksManifest struct {
	Hooks *HooksConfig `json:"hooks"`
}

// ReadManifest parses a hooks.json manifest. The manifest wraps events in a
// top-level "hooks" key and may contain a "$schema" key.
func ReadManifest(data []byte) (*HooksConfig, error) {
	var manifest hooksManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse hooks manifest: %w", err)
	}
	if manifest.Hooks == nil {
		return nil, ErrNoHooksKey
	}
	return manifest.Hooks, nil
}

// ReplaceHooksDir substitutes HooksDirPlaceholder in every command.
func ReplaceHooksDir(config *HooksConfig, dir string) {
	for _, event := range EventNames() {
		groups := config.GetEventGroups(event)
		for i := range groups {
			for j := range groups[i].Hooks {
				groups[i].Hooks[j].Command = strings.ReplaceAll(groups[i].Hooks[j].Command, HooksDirPlaceholder, dir)
			}
		}
	}
}
