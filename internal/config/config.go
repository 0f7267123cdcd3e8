// Package config provides configuration management for hookctl.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (HOOKCTL_*, CLAUDE_HOOKS_BYPASS)
// 3. Project config (.hookctl/config.yaml in cwd)
// 4. Home config (~/.config/hookctl/config.yaml)
// 5. Defaults
//
// Hooks run once per host event, so configuration is loaded once at process
// start and handed to each component explicitly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all hookctl configuration.
type Config struct {
	// Verbose enables debug logging on stderr.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Bypass disables every gate decision. Only the environment sets it.
	Bypass bool `yaml:"-" json:"bypass"`

	Gate      GateConfig      `yaml:"gate" json:"gate"`
	LockClean LockCleanConfig `yaml:"lock_clean" json:"lock_clean"`
	Session   SessionConfig   `yaml:"session" json:"session"`
	Versions  VersionsConfig  `yaml:"versions" json:"versions"`
	Install   InstallConfig   `yaml:"install" json:"install"`
}

// GateConfig holds policy gate settings.
type GateConfig struct {
	// Tools overrides the scanned tool names.
	Tools []string `yaml:"tools" json:"tools,omitempty"`

	// ExcludedExtensions overrides the documentation extension set.
	ExcludedExtensions []string `yaml:"excluded_extensions" json:"excluded_extensions,omitempty"`

	// Rules replaces the built-in rules when non-empty.
	Rules []RuleConfig `yaml:"rules" json:"rules,omitempty"`

	// InstallPattern overrides the regular expression that recognizes
	// package-install commands.
	InstallPattern string `yaml:"install_pattern" json:"install_pattern,omitempty"`

	// ExtraRules are appended after the active rules.
	ExtraRules []RuleConfig `yaml:"extra_rules" json:"extra_rules,omitempty"`
}

// RuleConfig is a policy rule as written in YAML.
type RuleConfig struct {
	Name           string   `yaml:"name" json:"name"`
	Pattern        string   `yaml:"pattern" json:"pattern"`
	Match          string   `yaml:"match" json:"match,omitempty"`
	IgnoreCase     bool     `yaml:"ignore_case" json:"ignore_case,omitempty"`
	Reason         string   `yaml:"reason" json:"reason"`
	Tools          []string `yaml:"tools" json:"tools,omitempty"`
	SkipExtensions []string `yaml:"skip_extensions" json:"skip_extensions,omitempty"`
}

// LockCleanConfig holds stale-lock cleaner settings.
type LockCleanConfig struct {
	// Program is the process name whose liveness protects the lock.
	// Default: git
	Program string `yaml:"program" json:"program"`

	// LockFile is relative to the command's working directory.
	// Default: .git/index.lock
	LockFile string `yaml:"lock_file" json:"lock_file"`
}

// SessionConfig holds session context summarizer settings.
type SessionConfig struct {
	// TrackerCommand is the task tracker CLI.
	// Default: bd
	TrackerCommand string `yaml:"tracker_command" json:"tracker_command"`

	// ReadyLimit caps the ready work items shown.
	// Default: 5
	ReadyLimit int `yaml:"ready_limit" json:"ready_limit"`

	// QueryTimeout bounds each tracker call.
	// Default: 2s
	QueryTimeout time.Duration `yaml:"query_timeout" json:"query_timeout"`
}

// VersionsConfig holds version-divergence checker settings.
type VersionsConfig struct {
	// CacheFile stores research summaries keyed by package and majors.
	// Default: ~/.cache/claude-hooks/version-research.json
	CacheFile string `yaml:"cache_file" json:"cache_file"`

	// Backend selects the research backend: "cli" or "api".
	// Default: cli
	Backend string `yaml:"backend" json:"backend"`

	// ResearchCommand is the agent CLI spawned by the cli backend.
	// Default: claude
	ResearchCommand string `yaml:"research_command" json:"research_command"`

	// Model is the model used by the api backend.
	Model string `yaml:"model" json:"model"`

	// ResearchTimeout bounds one research call.
	// Default: 300s
	ResearchTimeout time.Duration `yaml:"research_timeout" json:"research_timeout"`

	// LookupTimeout bounds one registry lookup.
	// Default: 5s
	LookupTimeout time.Duration `yaml:"lookup_timeout" json:"lookup_timeout"`

	// MaxResearch caps concurrent research calls.
	// Default: 10
	MaxResearch int `yaml:"max_research" json:"max_research"`

	// NPMRegistry and PyPIRegistry are registry base URLs.
	NPMRegistry  string `yaml:"npm_registry" json:"npm_registry"`
	PyPIRegistry string `yaml:"pypi_registry" json:"pypi_registry"`

	// APIKey comes from ANTHROPIC_API_KEY only.
	APIKey string `yaml:"-" json:"-"`
}

// InstallConfig holds installer settings.
type InstallConfig struct {
	// TargetDir receives the hook directory links.
	// Default: ~/.claude/hooks
	TargetDir string `yaml:"target_dir" json:"target_dir"`

	// DataDir receives hook scripts extracted from the binary.
	// Default: ~/.config/hookctl/hooks
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// SettingsPath is the host settings file hooks are registered in.
	// Default: ~/.claude/settings.json
	SettingsPath string `yaml:"settings_path" json:"settings_path"`
}

// Default config values (used in resolution and validation).
const (
	defaultProgram         = "git"
	defaultLockFile        = ".git/index.lock"
	defaultTrackerCommand  = "bd"
	defaultReadyLimit      = 5
	defaultQueryTimeout    = 2 * time.Second
	defaultBackend         = "cli"
	defaultResearchCommand = "claude"
	defaultModel           = "claude-sonnet-4-20250514"
	defaultResearchTimeout = 300 * time.Second
	defaultLookupTimeout   = 5 * time.Second
	defaultMaxResearch     = 10
	defaultNPMRegistry     = "https://registry.npmjs.org"
	defaultPyPIRegistry    = "https://pypi.org/pypi"
)

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		LockClean: LockCleanConfig{
			Program:  defaultProgram,
			LockFile: defaultLockFile,
		},
		Session: SessionConfig{
			TrackerCommand: defaultTrackerCommand,
			ReadyLimit:     defaultReadyLimit,
			QueryTimeout:   defaultQueryTimeout,
		},
		Versions: VersionsConfig{
			CacheFile:       filepath.Join(homeDir, ".cache", "claude-hooks", "version-research.json"),
			Backend:         defaultBackend,
			ResearchCommand: defaultResearchCommand,
			Model:           defaultModel,
			ResearchTimeout: defaultResearchTimeout,
			LookupTimeout:   defaultLookupTimeout,
			MaxResearch:     defaultMaxResearch,
			NPMRegistry:     defaultNPMRegistry,
			PyPIRegistry:    defaultPyPIRegistry,
		},
		Install: InstallConfig{
			TargetDir:    filepath.Join(homeDir, ".claude", "hooks"),
			DataDir:      filepath.Join(homeDir, ".config", "hookctl", "hooks"),
			SettingsPath: filepath.Join(homeDir, ".claude", "settings.json"),
		},
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
// Unreadable or malformed files are skipped. A bad environment value is
// reported as an error alongside a config that still carries every other
// layer.
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	if homeConfig, _ := loadFromPath(homeConfigPath()); homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	if projectConfig, _ := loadFromPath(projectConfigPath()); projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg, err := applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, err
}

// Paths returns the home and project config file locations.
func Paths() (home, project string) {
	return homeConfigPath(), projectConfigPath()
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hookctl", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("HOOKCTL_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".hookctl", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

// envOverlay lists every environment variable hookctl reads.
type envOverlay struct {
	Bypass          string        `env:"CLAUDE_HOOKS_BYPASS"`
	Verbose         string        `env:"HOOKCTL_VERBOSE"`
	TrackerCommand  string        `env:"HOOKCTL_TRACKER_COMMAND"`
	Backend         string        `env:"HOOKCTL_RESEARCH_BACKEND"`
	ResearchCommand string        `env:"HOOKCTL_RESEARCH_COMMAND"`
	Model           string        `env:"HOOKCTL_RESEARCH_MODEL"`
	ResearchTimeout time.Duration `env:"HOOKCTL_RESEARCH_TIMEOUT"`
	CacheFile       string        `env:"HOOKCTL_CACHE_FILE"`
	TargetDir       string        `env:"HOOKCTL_HOOKS_DIR"`
	APIKey          string        `env:"ANTHROPIC_API_KEY"`
}

// EnvVars returns the names of the environment variables hookctl reads.
func EnvVars() []string {
	return []string{
		"HOOKCTL_CONFIG",
		"CLAUDE_HOOKS_BYPASS",
		"HOOKCTL_VERBOSE",
		"HOOKCTL_TRACKER_COMMAND",
		"HOOKCTL_RESEARCH_BACKEND",
		"HOOKCTL_RESEARCH_COMMAND",
		"HOOKCTL_RESEARCH_MODEL",
		"HOOKCTL_RESEARCH_TIMEOUT",
		"HOOKCTL_CACHE_FILE",
		"HOOKCTL_HOOKS_DIR",
		"ANTHROPIC_API_KEY",
	}
}

// bypassOverlay is parsed on its own so a malformed unrelated variable
// cannot switch bypass off.
type bypassOverlay struct {
	Bypass string `env:"CLAUDE_HOOKS_BYPASS"`
}

// readEnv parses the overlay. On error the fields that did parse are still
// returned, and Bypass is always populated.
func readEnv() (envOverlay, error) {
	var e envOverlay
	err := env.Parse(&e)

	var b bypassOverlay
	if berr := env.Parse(&b); berr == nil {
		e.Bypass = b.Bypass
	}

	if err != nil {
		return e, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// applyEnv applies environment variable overrides. A parse error is returned
// after every parsed value has been applied.
func applyEnv(cfg *Config) (*Config, error) {
	e, err := readEnv()
	// Only the literal "1" bypasses; anything else leaves gating on.
	if strings.TrimSpace(e.Bypass) == "1" {
		cfg.Bypass = true
	}
	if isTruthy(e.Verbose) {
		cfg.Verbose = true
	}
	mergeStr(&cfg.Session.TrackerCommand, e.TrackerCommand)
	mergeStr(&cfg.Versions.Backend, e.Backend)
	mergeStr(&cfg.Versions.ResearchCommand, e.ResearchCommand)
	mergeStr(&cfg.Versions.Model, e.Model)
	mergeDuration(&cfg.Versions.ResearchTimeout, e.ResearchTimeout)
	mergeStr(&cfg.Versions.CacheFile, e.CacheFile)
	mergeStr(&cfg.Install.TargetDir, e.TargetDir)
	mergeStr(&cfg.Versions.APIKey, e.APIKey)
	return cfg, err
}

func isTruthy(v string) bool {
	return v == "1" || v == "true"
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeInt overwrites dst with src when src is non-zero.
func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

func mergeDuration(dst *time.Duration, src time.Duration) {
	if src > 0 {
		*dst = src
	}
}

func mergeStrings(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
// Booleans only ever turn on.
func merge(dst, src *Config) *Config {
	if src.Verbose {
		dst.Verbose = true
	}
	if src.Bypass {
		dst.Bypass = true
	}

	mergeGate(&dst.Gate, &src.Gate)
	mergeLockClean(&dst.LockClean, &src.LockClean)
	mergeSession(&dst.Session, &src.Session)
	mergeVersions(&dst.Versions, &src.Versions)
	mergeInstall(&dst.Install, &src.Install)

	return dst
}

// mergeGate replaces list settings wholesale; extra rules accumulate.
func mergeGate(dst, src *GateConfig) {
	mergeStrings(&dst.Tools, src.Tools)
	mergeStrings(&dst.ExcludedExtensions, src.ExcludedExtensions)
	mergeStr(&dst.InstallPattern, src.InstallPattern)
	if len(src.Rules) > 0 {
		dst.Rules = src.Rules
	}
	dst.ExtraRules = append(dst.ExtraRules, src.ExtraRules...)
}

func mergeLockClean(dst, src *LockCleanConfig) {
	mergeStr(&dst.Program, src.Program)
	mergeStr(&dst.LockFile, src.LockFile)
}

func mergeSession(dst, src *SessionConfig) {
	mergeStr(&dst.TrackerCommand, src.TrackerCommand)
	mergeInt(&dst.ReadyLimit, src.ReadyLimit)
	mergeDuration(&dst.QueryTimeout, src.QueryTimeout)
}

func mergeVersions(dst, src *VersionsConfig) {
	mergeStr(&dst.CacheFile, src.CacheFile)
	mergeStr(&dst.Backend, src.Backend)
	mergeStr(&dst.ResearchCommand, src.ResearchCommand)
	mergeStr(&dst.Model, src.Model)
	mergeDuration(&dst.ResearchTimeout, src.ResearchTimeout)
	mergeDuration(&dst.LookupTimeout, src.LookupTimeout)
	mergeInt(&dst.MaxResearch, src.MaxResearch)
	mergeStr(&dst.NPMRegistry, src.NPMRegistry)
	mergeStr(&dst.PyPIRegistry, src.PyPIRegistry)
	mergeStr(&dst.APIKey, src.APIKey)
}

func mergeInstall(dst, src *InstallConfig) {
	mergeStr(&dst.TargetDir, src.TargetDir)
	mergeStr(&dst.DataDir, src.DataDir)
	mergeStr(&dst.SettingsPath, src.SettingsPath)
}
