package webembed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-webembed/internal/assets"
	"github.com/alnah/go-webembed/internal/fileutil"
	"github.com/alnah/go-webembed/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.Bundler   = (*pipeline.ESBuildBundler)(nil)
	_ pipeline.Minifier  = (*pipeline.ESBuildMinifier)(nil)
	_ pipeline.Minifier  = (*pipeline.TdewolffHTMLMinifier)(nil)
	_ pipeline.Transform = (*pipeline.URLInliner)(nil)
	_ pipeline.Transform = (*pipeline.CSSMinifier)(nil)
)

// Builder runs the packaging pipeline. A Builder holds no per-build state
// and may run several builds, one at a time or concurrently.
type Builder struct {
	cfg          builderConfig
	log          zerolog.Logger
	templates    *assets.Resolver
	newBundler   func(baseDir string) pipeline.Bundler
	jsMinifier   pipeline.Minifier
	htmlMinifier pipeline.Minifier
}

// NewBuilder creates a Builder with default configuration.
// Returns an error if the template override directory is invalid.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{
		cfg: builderConfig{
			format:    FormatESM,
			minifyCSS: true,
			command:   pipeline.DefaultCommand,
		},
		log:          zerolog.Nop(),
		htmlMinifier: pipeline.NewHTMLMinifier(),
	}

	for _, opt := range opts {
		opt(b)
	}

	resolver, err := assets.NewResolver(b.cfg.templateBase)
	if err != nil {
		return nil, fmt.Errorf("template directory: %w", err)
	}
	b.templates = resolver

	if b.newBundler == nil {
		b.newBundler = b.esbuildBundler
	}
	if b.jsMinifier == nil {
		b.jsMinifier = &pipeline.ESBuildMinifier{Format: b.cfg.format, Target: b.cfg.target}
	}

	return b, nil
}

// esbuildBundler builds the production bundler for one project root.
// Stylesheets are minified before their assets are inlined: the minifier
// would otherwise re-encode base64 data URIs as percent-encoded text.
func (b *Builder) esbuildBundler(baseDir string) pipeline.Bundler {
	var transforms []pipeline.Transform
	if b.cfg.minifyCSS {
		transforms = append(transforms, pipeline.NewCSSMinifier())
	}
	transforms = append(transforms, &pipeline.URLInliner{Concurrency: b.cfg.concurrency, Log: b.log})

	bundler := pipeline.NewESBuildBundler(baseDir, transforms...)
	bundler.Format = b.cfg.format
	bundler.Target = b.cfg.target
	return bundler
}

// Build runs every stage in order and writes the debug HTML and the
// header. Any error aborts the build before either output is touched.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (b *Builder) Build(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	in := input.withDefaults()
	if err := in.validate(); err != nil {
		return nil, err
	}

	baseDir, err := filepath.Abs(in.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: base directory: %v", ErrInvalidInput, err)
	}

	run := &buildRun{
		b:       b,
		in:      in,
		baseDir: baseDir,
		result: &Result{
			DebugHTMLPath: fileutil.ResolvePath(baseDir, in.DebugHTML),
			HeaderPath:    fileutil.ResolvePath(baseDir, in.Header),
		},
	}

	for _, stage := range []struct {
		name string
		fn   func(context.Context) error
	}{
		{StageBundle, run.bundle},
		{StageMinifyJS, run.minifyJS},
		{StageCompose, run.compose},
		{StageMinifyHTML, run.minifyHTML},
		{StageHeader, run.header},
		{StageWrite, run.write},
	} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		if err := stage.fn(ctx); err != nil {
			return nil, err
		}
		elapsed := time.Since(start)
		run.result.Stages = append(run.result.Stages, StageTiming{Stage: stage.name, Duration: elapsed})
		b.log.Debug().Str("stage", stage.name).Dur("took", elapsed).Msg("stage done")
	}

	b.log.Info().Msg("done!")
	return run.result, nil
}

// buildRun carries the intermediate values of one build.
type buildRun struct {
	b       *Builder
	in      Input
	baseDir string
	result  *Result

	bundled  string
	composed string
}

func (r *buildRun) bundle(ctx context.Context) error {
	r.b.log.Info().Str("entry", r.in.Entry).Msg("Building client...")

	entry := filepath.ToSlash(r.in.Entry)
	if !filepath.IsAbs(r.in.Entry) && !strings.HasPrefix(entry, "./") && !strings.HasPrefix(entry, "../") {
		entry = "./" + entry
	}

	out, err := r.b.newBundler(r.baseDir).Bundle(ctx, entry)
	if err != nil {
		return err
	}

	for _, w := range out.Warnings {
		r.b.log.Warn().Msg(w)
	}
	for _, m := range out.Modules {
		r.b.log.Debug().Str("module", m).Msg("bundled")
	}

	r.bundled = out.Code
	r.result.Modules = out.Modules
	r.result.Warnings = out.Warnings
	return nil
}

func (r *buildRun) minifyJS(ctx context.Context) error {
	r.b.log.Info().Msg("Minifying js...")

	js, err := r.b.jsMinifier.Minify(ctx, r.bundled)
	if err != nil {
		return err
	}
	r.result.JS = js
	return nil
}

func (r *buildRun) compose(ctx context.Context) error {
	shellPath := fileutil.ResolvePath(r.baseDir, r.in.Shell)
	shell, err := os.ReadFile(shellPath) // #nosec G304 -- project file
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrReadSource, shellPath, err)
	}

	doc := pipeline.NewDocument(string(shell))
	if _, err := doc.ExtractScript(r.in.ModuleRef); err != nil {
		return fmt.Errorf("%s: %w", shellPath, err)
	}
	if err := doc.InjectScript(r.in.Marker, r.result.JS); err != nil {
		return fmt.Errorf("%s: %w", shellPath, err)
	}

	r.composed = doc.String()
	return ctx.Err()
}

func (r *buildRun) minifyHTML(ctx context.Context) error {
	r.b.log.Info().Msg("minifying html...")

	html, err := r.b.htmlMinifier.Minify(ctx, r.composed)
	if err != nil {
		return err
	}
	r.result.HTML = html
	return nil
}

func (r *buildRun) header(ctx context.Context) error {
	text, err := r.b.templates.Resolve(r.b.cfg.template, r.baseDir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHeaderRender, err)
	}
	renderer, err := pipeline.NewHeaderRenderer(text)
	if err != nil {
		return err
	}

	literal := pipeline.EscapeStringLiteral(r.result.HTML, r.in.Escape)
	if err := r.checkLiteral(literal); err != nil {
		return err
	}

	header, err := renderer.Render(pipeline.HeaderData{
		Type:     r.in.Type,
		Variable: r.in.Variable,
		Literal:  literal,
		Command:  r.b.cfg.command,
	})
	if err != nil {
		return err
	}
	if !strings.Contains(header, literal) {
		return fmt.Errorf("%w: template does not emit {{.Literal}}", ErrHeaderRender)
	}

	r.result.Header = header
	return ctx.Err()
}

// checkLiteral verifies that a compiler reading literal gets the HTML back.
// Full escaping must always round-trip; the quote-only mode only warns,
// since reproducing older headers byte for byte is its purpose.
func (r *buildRun) checkLiteral(literal string) error {
	if pipeline.UnescapeStringLiteral(literal) == r.result.HTML && !strings.ContainsAny(literal, "\r\n") {
		return nil
	}
	if r.in.Escape == EscapeQuotes {
		r.b.log.Warn().Msg("HTML contains backslashes or line breaks that the compiler will reinterpret; use escape mode full")
		return nil
	}
	return fmt.Errorf("%w: escaped literal differs from the minified HTML", ErrLiteralMismatch)
}

func (r *buildRun) write(context.Context) error {
	if r.in.DryRun {
		r.b.log.Info().Msg("dry run: nothing written")
		return nil
	}

	return writeOutputs(r.b.log, []output{
		{label: r.in.DebugHTML, path: r.result.DebugHTMLPath, content: r.result.HTML},
		{label: r.in.Header, path: r.result.HeaderPath, content: r.result.Header},
	})
}
