package main

import (
	"path/filepath"

	"github.com/alnah/go-webembed/internal/config"
	"github.com/alnah/go-webembed/internal/fileutil"
)

// project is the resolved configuration a command runs against.
type project struct {
	cfg        *config.Config
	baseDir    string // absolute project root
	configPath string // loaded config file ("" = defaults only)
	env        *envConfig
}

// path resolves a project-relative path against the base directory.
func (p *project) path(rel string) string {
	return fileutil.ResolvePath(p.baseDir, rel)
}

// resolveProject builds the configuration from, in rising priority:
// defaults, the config file, the environment (with .env underneath the
// process environment). Command flags are applied by the caller.
func resolveProject(flags commonFlags, env *Environment) (*project, error) {
	baseDir := firstNonEmpty(flags.base, env.Getenv("WEBEMBED_BASE_DIR"), ".")

	dotenv, err := readDotEnv(baseDir)
	if err != nil {
		return nil, err
	}
	getenv := withDotEnv(env.Getenv, dotenv)
	warnUnknownEnvVars(env.Stderr, env.Environ(), dotenv)

	ec := loadEnvConfig(getenv)
	if flags.base == "" && ec.BaseDir != "" {
		baseDir = ec.BaseDir
	}

	configPath := firstNonEmpty(flags.config, ec.ConfigPath)
	if configPath == "" {
		// Absolute so LoadConfig takes it as a path, not a name.
		if abs, err := filepath.Abs(baseDir); err == nil {
			configPath = config.FindProjectConfig(abs)
		}
	}

	cfg := config.DefaultConfig()
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		// A baseDir in the file is relative to the file itself and only
		// applies when neither flag nor environment chose one.
		if cfg.BaseDir != "" && flags.base == "" && ec.BaseDir == "" {
			baseDir = fileutil.ResolvePath(filepath.Dir(configPath), cfg.BaseDir)
		}
	}

	applyEnvConfig(ec, cfg)

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	cfg.BaseDir = abs

	return &project{cfg: cfg, baseDir: abs, configPath: configPath, env: ec}, nil
}

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
