package config

import "strings"

// Source represents where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.config/hookctl/config.yaml"
	SourceProject Source = ".hookctl/config.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

type resolved struct {
	Value  interface{} `json:"value"`
	Source Source      `json:"source"`
}

// ResolvedConfig shows config values with their sources.
type ResolvedConfig struct {
	Verbose         resolved `json:"verbose"`
	Bypass          resolved `json:"bypass"`
	TrackerCommand  resolved `json:"tracker_command"`
	Backend         resolved `json:"research_backend"`
	ResearchCommand resolved `json:"research_command"`
	CacheFile       resolved `json:"cache_file"`
	HooksDir        resolved `json:"hooks_dir"`
	GateRules       resolved `json:"gate_rules"`
}

// resolveStringField resolves a string through the precedence chain.
func resolveStringField(home, project, env, flag, def string) resolved {
	result := resolved{Value: def, Source: SourceDefault}
	if home != "" {
		result = resolved{Value: home, Source: SourceHome}
	}
	if project != "" {
		result = resolved{Value: project, Source: SourceProject}
	}
	if env != "" {
		result = resolved{Value: env, Source: SourceEnv}
	}
	if flag != "" {
		result = resolved{Value: flag, Source: SourceFlag}
	}
	return result
}

// Resolve returns configuration with source tracking.
// Uses precedence chain: flags > env > project > home > defaults.
func Resolve(flagVerbose bool) *ResolvedConfig {
	def := Default()
	home, _ := loadFromPath(homeConfigPath())
	project, _ := loadFromPath(projectConfigPath())
	if home == nil {
		home = &Config{}
	}
	if project == nil {
		project = &Config{}
	}
	e, _ := readEnv()

	rc := &ResolvedConfig{
		Verbose:         resolved{Value: false, Source: SourceDefault},
		Bypass:          resolved{Value: false, Source: SourceDefault},
		TrackerCommand:  resolveStringField(home.Session.TrackerCommand, project.Session.TrackerCommand, e.TrackerCommand, "", def.Session.TrackerCommand),
		Backend:         resolveStringField(home.Versions.Backend, project.Versions.Backend, e.Backend, "", def.Versions.Backend),
		ResearchCommand: resolveStringField(home.Versions.ResearchCommand, project.Versions.ResearchCommand, e.ResearchCommand, "", def.Versions.ResearchCommand),
		CacheFile:       resolveStringField(home.Versions.CacheFile, project.Versions.CacheFile, e.CacheFile, "", def.Versions.CacheFile),
		HooksDir:        resolveStringField(home.Install.TargetDir, project.Install.TargetDir, e.TargetDir, "", def.Install.TargetDir),
		GateRules:       resolved{Value: "built-in", Source: SourceDefault},
	}

	// Verbose has OR semantics through the chain.
	if home.Verbose {
		rc.Verbose = resolved{Value: true, Source: SourceHome}
	}
	if project.Verbose {
		rc.Verbose = resolved{Value: true, Source: SourceProject}
	}
	if isTruthy(e.Verbose) {
		rc.Verbose = resolved{Value: true, Source: SourceEnv}
	}
	if flagVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceFlag}
	}

	if strings.TrimSpace(e.Bypass) == "1" {
		rc.Bypass = resolved{Value: true, Source: SourceEnv}
	}

	if len(home.Gate.Rules) > 0 {
		rc.GateRules = resolved{Value: len(home.Gate.Rules), Source: SourceHome}
	}
	if len(project.Gate.Rules) > 0 {
		rc.GateRules = resolved{Value: len(project.Gate.Rules), Source: SourceProject}
	}

	return rc
}
