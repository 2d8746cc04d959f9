package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alnah/go-webembed/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// DefaultName is the config name looked up when none is given.
const DefaultName = "webembed"

// Field length limits.
const (
	MaxPathLength       = 4096
	MaxMarkerLength     = 200
	MaxIdentifierLength = 64
	MaxURLLength        = 2048
	MaxConcurrency      = 256
)

// Default project layout, relative to the base directory.
const (
	DefaultEntry     = "src/main.js"
	DefaultShell     = "src/index.html"
	DefaultDebugHTML = "dist.html"
	DefaultHeader    = "../Arduino/client.h"
	DefaultModuleRef = "./main.js"
	DefaultMarker    = "<!--inline main.js inject position-->"
	DefaultServeAddr = "127.0.0.1:8080"
	DefaultDeviceURL = "http://192.168.4.1"
)

// identifierPattern matches C/C++ identifiers. typePattern also admits
// qualified, templated and pointer types such as "const char*".
var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	typePattern       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_:<> ]*\**$`)
)

// Config holds the build configuration of a web client project.
type Config struct {
	BaseDir   string       `yaml:"baseDir"`   // Project root (empty = current directory)
	Entry     string       `yaml:"entry"`     // Entry module, relative to BaseDir
	Shell     string       `yaml:"shell"`     // HTML shell, relative to BaseDir
	ModuleRef string       `yaml:"moduleRef"` // Reference identifying the entry script tag
	Marker    string       `yaml:"marker"`    // Comment before which the script is injected
	Output    OutputConfig `yaml:"output"`
	Header    HeaderConfig `yaml:"header"`
	Bundle    BundleConfig `yaml:"bundle"`
	Assets    AssetsConfig `yaml:"assets"`
	Serve     ServeConfig  `yaml:"serve"`
	Device    DeviceConfig `yaml:"device"`
}

// OutputConfig defines where build outputs are written.
type OutputConfig struct {
	DebugHTML string `yaml:"debugHTML"` // Minified HTML copy, relative to BaseDir
	Header    string `yaml:"header"`    // Generated header, relative to BaseDir
}

// HeaderConfig defines how the header file is generated.
type HeaderConfig struct {
	Type     string `yaml:"type"`     // String type of the constant (default: "String")
	Variable string `yaml:"variable"` // Constant name (default: "HTML")
	Escape   string `yaml:"escape"`   // "full" (default) or "quotes"
	Template string `yaml:"template"` // Template name or path (empty = built-in "arduino")
}

// BundleConfig defines bundler options.
type BundleConfig struct {
	Format    string `yaml:"format"`    // "esm" (default) or "iife"
	Target    string `yaml:"target"`    // esbuild target, e.g. "es2020" (empty = esnext)
	MinifyCSS bool   `yaml:"minifyCSS"` // Minify stylesheets before embedding (default: true)
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	Concurrency int    `yaml:"concurrency"` // Parallel asset reads per stylesheet (0 = GOMAXPROCS)
	BasePath    string `yaml:"basePath"`    // Directory with templates/ overrides (empty = built-ins)
}

// ServeConfig defines the development server options.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// DeviceConfig defines the target device for settings updates.
type DeviceConfig struct {
	URL string `yaml:"url"`
}

// DefaultConfig returns the configuration matching the standard project layout.
func DefaultConfig() *Config {
	return &Config{
		Entry:     DefaultEntry,
		Shell:     DefaultShell,
		ModuleRef: DefaultModuleRef,
		Marker:    DefaultMarker,
		Output: OutputConfig{
			DebugHTML: DefaultDebugHTML,
			Header:    DefaultHeader,
		},
		Header: HeaderConfig{
			Type:     "String",
			Variable: "HTML",
			Escape:   "full",
		},
		Bundle: BundleConfig{
			Format:    "esm",
			MinifyCSS: true,
		},
		Serve:  ServeConfig{Addr: DefaultServeAddr},
		Device: DeviceConfig{URL: DefaultDeviceURL},
	}
}

// Validate checks field values and lengths.
// Called automatically by LoadConfig, but available for callers that
// construct or merge a Config themselves.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"baseDir", c.BaseDir, MaxPathLength},
		{"entry", c.Entry, MaxPathLength},
		{"shell", c.Shell, MaxPathLength},
		{"moduleRef", c.ModuleRef, MaxPathLength},
		{"marker", c.Marker, MaxMarkerLength},
		{"output.debugHTML", c.Output.DebugHTML, MaxPathLength},
		{"output.header", c.Output.Header, MaxPathLength},
		{"header.type", c.Header.Type, MaxIdentifierLength},
		{"header.variable", c.Header.Variable, MaxIdentifierLength},
		{"header.template", c.Header.Template, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"serve.addr", c.Serve.Addr, MaxURLLength},
		{"device.url", c.Device.URL, MaxURLLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Entry == "" || c.Shell == "" {
		return fmt.Errorf("%w: entry and shell are required", ErrInvalidValue)
	}
	if c.ModuleRef == "" {
		return fmt.Errorf("%w: moduleRef is required", ErrInvalidValue)
	}
	if !strings.HasPrefix(c.Marker, "<!--") || !strings.HasSuffix(c.Marker, "-->") {
		return fmt.Errorf("%w: marker: must be an HTML comment, got %q", ErrInvalidValue, c.Marker)
	}
	if c.Output.DebugHTML == "" || c.Output.Header == "" {
		return fmt.Errorf("%w: output.debugHTML and output.header are required", ErrInvalidValue)
	}

	if c.Header.Variable != "" && !identifierPattern.MatchString(c.Header.Variable) {
		return fmt.Errorf("%w: header.variable: %q is not a C identifier", ErrInvalidValue, c.Header.Variable)
	}
	if c.Header.Type != "" && !typePattern.MatchString(c.Header.Type) {
		return fmt.Errorf("%w: header.type: %q is not a type name", ErrInvalidValue, c.Header.Type)
	}
	switch strings.ToLower(c.Header.Escape) {
	case "", "full", "quotes":
	default:
		return fmt.Errorf("%w: header.escape: %q (must be full or quotes)", ErrInvalidValue, c.Header.Escape)
	}

	switch strings.ToLower(c.Bundle.Format) {
	case "", "esm", "iife":
	default:
		return fmt.Errorf("%w: bundle.format: %q (must be esm or iife)", ErrInvalidValue, c.Bundle.Format)
	}

	if c.Assets.Concurrency < 0 || c.Assets.Concurrency > MaxConcurrency {
		return fmt.Errorf("%w: assets.concurrency: must be between 0 and %d, got %d", ErrInvalidValue, MaxConcurrency, c.Assets.Concurrency)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	return loadFile(configPath)
}

// FindProjectConfig returns the path of webembed.yaml or webembed.yml in dir,
// or "" when the project has no config file.
func FindProjectConfig(dir string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, DefaultName+ext)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// loadFile reads, parses and validates a config file.
func loadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, `/\`)
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/webembed/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, DefaultName, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
