package webembed

import (
	"github.com/rs/zerolog"

	"github.com/alnah/go-webembed/internal/pipeline"
)

// builderConfig holds builder-wide settings.
type builderConfig struct {
	format       string
	target       string
	minifyCSS    bool
	concurrency  int
	template     string // template name or path (empty = built-in default)
	templateBase string // directory with templates/ overrides
	command      string // command named in the generated-file notice
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger receiving stage progress and warnings.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Builder) { b.log = log }
}

// WithFormat sets the bundle format, FormatESM (default) or FormatIIFE.
func WithFormat(format string) Option {
	return func(b *Builder) { b.cfg.format = format }
}

// WithTarget sets the esbuild language target, e.g. "es2020".
// Empty keeps esnext.
func WithTarget(target string) Option {
	return func(b *Builder) { b.cfg.target = target }
}

// WithMinifyCSS enables or disables stylesheet minification (default on).
func WithMinifyCSS(enabled bool) Option {
	return func(b *Builder) { b.cfg.minifyCSS = enabled }
}

// WithAssetConcurrency bounds parallel url(...) reads per stylesheet.
// Zero uses GOMAXPROCS.
func WithAssetConcurrency(n int) Option {
	return func(b *Builder) { b.cfg.concurrency = n }
}

// WithTemplate selects the header template by built-in name ("arduino",
// "progmem") or by path to a .tmpl file, relative paths resolving against
// Input.BaseDir.
func WithTemplate(nameOrPath string) Option {
	return func(b *Builder) { b.cfg.template = nameOrPath }
}

// WithTemplateBasePath adds a directory whose templates/ subdirectory
// overrides the built-in templates by name.
func WithTemplateBasePath(dir string) Option {
	return func(b *Builder) { b.cfg.templateBase = dir }
}

// WithCommand sets the command named in the generated-file notice.
func WithCommand(cmd string) Option {
	return func(b *Builder) { b.cfg.command = cmd }
}

// withBundler replaces the esbuild bundler (tests).
func withBundler(newBundler func(baseDir string) pipeline.Bundler) Option {
	return func(b *Builder) { b.newBundler = newBundler }
}

// withJSMinifier replaces the esbuild minifier (tests).
func withJSMinifier(m pipeline.Minifier) Option {
	return func(b *Builder) { b.jsMinifier = m }
}
