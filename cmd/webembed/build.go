package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	webembed "github.com/alnah/go-webembed"
)

// runBuild executes the build command.
func runBuild(ctx context.Context, args []string, env *Environment) (*project, error) {
	flags, err := parseBuildFlags(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	p, err := resolveProject(flags.common, env)
	if err != nil {
		return nil, err
	}
	applyBuildFlags(flags, p)
	if err := p.cfg.Validate(); err != nil {
		return p, err
	}

	log := newLogger(env, flags.common)
	builder, err := webembed.NewBuilder(
		webembed.WithLogger(log),
		webembed.WithFormat(strings.ToLower(p.cfg.Bundle.Format)),
		webembed.WithTarget(p.cfg.Bundle.Target),
		webembed.WithMinifyCSS(p.cfg.Bundle.MinifyCSS),
		webembed.WithAssetConcurrency(p.cfg.Assets.Concurrency),
		webembed.WithTemplate(p.cfg.Header.Template),
		webembed.WithTemplateBasePath(optionalPath(p, p.cfg.Assets.BasePath)),
		webembed.WithCommand(commandLine(p)),
	)
	if err != nil {
		return p, err
	}

	result, err := builder.Build(ctx, buildInput(p, flags.dryRun))
	if err != nil {
		return p, err
	}

	if !flags.common.quiet {
		printSummary(env.Stdout, p, result, flags.dryRun, flags.common.verbose)
	}
	return p, nil
}

// applyBuildFlags copies explicitly set flags onto the project config.
func applyBuildFlags(f *buildFlags, p *project) {
	set := func(name string, dst *string, value string) {
		if f.fs.Changed(name) {
			*dst = value
		}
	}

	cfg := p.cfg
	set("entry", &cfg.Entry, f.paths.entry)
	set("shell", &cfg.Shell, f.paths.shell)
	set("module-ref", &cfg.ModuleRef, f.paths.moduleRef)
	set("marker", &cfg.Marker, f.paths.marker)
	set("debug-html", &cfg.Output.DebugHTML, f.paths.debugHTML)
	set("header", &cfg.Output.Header, f.paths.header)
	set("escape", &cfg.Header.Escape, f.header.escape)
	set("template", &cfg.Header.Template, f.header.template)
	set("type", &cfg.Header.Type, f.header.typeName)
	set("variable", &cfg.Header.Variable, f.header.variable)
	set("format", &cfg.Bundle.Format, f.bundle.format)
	set("target", &cfg.Bundle.Target, f.bundle.target)
	if f.fs.Changed("minify-css") {
		cfg.Bundle.MinifyCSS = f.bundle.minifyCSS
	}
}

// buildInput maps the project config onto a build Input.
func buildInput(p *project, dryRun bool) webembed.Input {
	cfg := p.cfg
	return webembed.Input{
		BaseDir:   p.baseDir,
		Entry:     cfg.Entry,
		Shell:     cfg.Shell,
		ModuleRef: cfg.ModuleRef,
		Marker:    cfg.Marker,
		DebugHTML: cfg.Output.DebugHTML,
		Header:    cfg.Output.Header,
		Type:      cfg.Header.Type,
		Variable:  cfg.Header.Variable,
		Escape:    webembed.EscapeMode(strings.ToLower(cfg.Header.Escape)),
		DryRun:    dryRun,
	}
}

// optionalPath resolves rel against the base directory, keeping "" empty.
func optionalPath(p *project, rel string) string {
	if rel == "" {
		return ""
	}
	return p.path(rel)
}

// commandLine is the command named in the generated-file notice.
func commandLine(p *project) string {
	if p.configPath == "" {
		return "webembed build"
	}
	return "webembed build -c " + filepath.Base(p.configPath)
}

// printSummary reports the outputs of a finished build.
func printSummary(w io.Writer, p *project, r *webembed.Result, dryRun, verbose bool) {
	verb := "wrote"
	if dryRun {
		verb = "would write"
	}
	fmt.Fprintf(w, "%s %s (%s)\n", verb, relPath(p.baseDir, r.DebugHTMLPath), humanize.Bytes(uint64(len(r.HTML))))
	fmt.Fprintf(w, "%s %s (%s)\n", verb, relPath(p.baseDir, r.HeaderPath), humanize.Bytes(uint64(len(r.Header))))

	if !verbose {
		return
	}
	for _, s := range r.Stages {
		fmt.Fprintf(w, "  %-12s %v\n", s.Stage, s.Duration.Round(10*time.Microsecond))
	}
	fmt.Fprintf(w, "  %-12s %v\n", "total", r.Duration().Round(10*time.Microsecond))
	fmt.Fprintf(w, "modules (%d):\n", len(r.Modules))
	for _, m := range r.Modules {
		fmt.Fprintf(w, "  %s\n", m)
	}
}

// relPath shows path relative to base when that is shorter to read.
func relPath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
