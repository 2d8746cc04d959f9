package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/go-webembed/internal/config"
)

// envPrefix marks the variables webembed reads.
const envPrefix = "WEBEMBED_"

// dotEnvFile is read from the project base directory when present.
const dotEnvFile = ".env"

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without a YAML file.
type envConfig struct {
	ConfigPath string // WEBEMBED_CONFIG: config file name or path
	BaseDir    string // WEBEMBED_BASE_DIR: project base directory
	Header     string // WEBEMBED_HEADER: header output path
	DebugHTML  string // WEBEMBED_DEBUG_HTML: debug HTML output path
	DeviceURL  string // WEBEMBED_DEVICE_URL: device base URL
	ServeAddr  string // WEBEMBED_SERVE_ADDR: dev server listen address
}

// knownEnvVars lists valid WEBEMBED_* environment variables.
var knownEnvVars = map[string]bool{
	"WEBEMBED_CONFIG":     true,
	"WEBEMBED_BASE_DIR":   true,
	"WEBEMBED_HEADER":     true,
	"WEBEMBED_DEBUG_HTML": true,
	"WEBEMBED_DEVICE_URL": true,
	"WEBEMBED_SERVE_ADDR": true,
}

// lookupFunc returns the value of a variable, "" when unset.
type lookupFunc func(string) string

// loadEnvConfig reads the WEBEMBED_* variables through getenv.
func loadEnvConfig(getenv lookupFunc) *envConfig {
	return &envConfig{
		ConfigPath: getenv("WEBEMBED_CONFIG"),
		BaseDir:    getenv("WEBEMBED_BASE_DIR"),
		Header:     getenv("WEBEMBED_HEADER"),
		DebugHTML:  getenv("WEBEMBED_DEBUG_HTML"),
		DeviceURL:  getenv("WEBEMBED_DEVICE_URL"),
		ServeAddr:  getenv("WEBEMBED_SERVE_ADDR"),
	}
}

// readDotEnv parses dir/.env. A missing file yields an empty map.
// The process environment is left untouched.
func readDotEnv(dir string) (map[string]string, error) {
	path := filepath.Join(dir, dotEnvFile)
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return vars, nil
}

// withDotEnv layers dotenv values under getenv: a variable set in the
// process environment always wins.
func withDotEnv(getenv lookupFunc, dotenv map[string]string) lookupFunc {
	return func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
}

// warnUnknownEnvVars writes a warning for each unrecognized WEBEMBED_*
// name, e.g. WEBEMBED_HEDAER.
func warnUnknownEnvVars(w io.Writer, environ []string, dotenv map[string]string) {
	seen := make(map[string]bool)
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		seen[name] = true
	}
	for name := range dotenv {
		seen[name] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		if strings.HasPrefix(name, envPrefix) && !knownEnvVars[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig copies set environment values onto cfg.
// cfg already carries file values over defaults, so env replaces both;
// flags are applied afterwards.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Header != "" {
		cfg.Output.Header = env.Header
	}
	if env.DebugHTML != "" {
		cfg.Output.DebugHTML = env.DebugHTML
	}
	if env.DeviceURL != "" {
		cfg.Device.URL = env.DeviceURL
	}
	if env.ServeAddr != "" {
		cfg.Serve.Addr = env.ServeAddr
	}
}
