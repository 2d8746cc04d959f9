package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
)

// Bundle output formats.
const (
	FormatESM  = "esm"
	FormatIIFE = "iife"
)

// stylesheetPluginName identifies the esbuild plugin in diagnostics.
const stylesheetPluginName = "webembed-stylesheets"

// stylesheetModuleTemplate turns stylesheet text into a module whose default
// export is a constructed stylesheet, the value a CSS module import
// (import sheet from "./x.css" with {type: "css"}) evaluates to.
const stylesheetModuleTemplate = `const sheet = new CSSStyleSheet();
sheet.replaceSync(%s);
export default sheet;
`

// Transform rewrites the source text of a single module during bundling.
// id is the module's absolute path. ok == false leaves the text unchanged.
type Transform interface {
	Transform(ctx context.Context, source, id string) (replacement string, ok bool, err error)
}

// TransformFunc adapts a function to the Transform interface.
type TransformFunc func(ctx context.Context, source, id string) (string, bool, error)

// Transform calls f(ctx, source, id).
func (f TransformFunc) Transform(ctx context.Context, source, id string) (string, bool, error) {
	return f(ctx, source, id)
}

// Bundler defines the contract for resolving an entry module's import graph.
type Bundler interface {
	Bundle(ctx context.Context, entry string) (*BundleOutput, error)
}

// BundleOutput is the result of one bundling run.
type BundleOutput struct {
	Code     string   // emitted code unit
	Modules  []string // resolved module graph, paths relative to the base dir
	Warnings []string // non-fatal diagnostics, already filtered
}

// ESBuildBundler bundles ES modules with esbuild.
// Stylesheet imports are loaded by a plugin that applies Transforms in order.
type ESBuildBundler struct {
	BaseDir    string      // absolute project directory, entry paths are relative to it
	Format     string      // FormatESM (default) or FormatIIFE
	Target     string      // esbuild target such as "es2020" (empty = esnext)
	Transforms []Transform // applied in order to every stylesheet module
}

// NewESBuildBundler creates a bundler rooted at baseDir.
func NewESBuildBundler(baseDir string, transforms ...Transform) *ESBuildBundler {
	return &ESBuildBundler{
		BaseDir:    baseDir,
		Format:     FormatESM,
		Transforms: transforms,
	}
}

// Bundle resolves the static import graph of entry into a single code unit.
// Errors reported by esbuild are returned as ErrTransform; a failure raised by
// a stylesheet transform is returned as is, so ErrAssetRead stays detectable.
func (b *ESBuildBundler) Bundle(ctx context.Context, entry string) (*BundleOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, err := esbuildFormat(b.Format)
	if err != nil {
		return nil, err
	}
	target, err := esbuildTarget(b.Target)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		hookErr error
	)
	plugin := api.Plugin{
		Name: stylesheetPluginName,
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: `\.css$`, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					contents, err := b.loadStylesheet(ctx, args.Path)
					if err != nil {
						mu.Lock()
						if hookErr == nil {
							hookErr = err
						}
						mu.Unlock()
						return api.OnLoadResult{}, err
					}
					return api.OnLoadResult{
						Contents:   &contents,
						Loader:     api.LoaderJS,
						ResolveDir: filepath.Dir(args.Path),
					}, nil
				})
		},
	}

	result := api.Build(api.BuildOptions{
		EntryPoints:   []string{entry},
		AbsWorkingDir: b.BaseDir,
		Bundle:        true,
		Write:         false,
		Format:        format,
		Target:        target,
		Outfile:       "bundle.js",
		Metafile:      true,
		LogLevel:      api.LogLevelSilent,
		Plugins:       []api.Plugin{plugin},
	})

	if len(result.Errors) > 0 {
		if hookErr != nil {
			return nil, hookErr
		}
		return nil, fmt.Errorf("%w: bundling %s: %s", ErrTransform, entry, formatMessages(result.Errors))
	}

	code, err := jsOutput(result.OutputFiles)
	if err != nil {
		return nil, err
	}

	modules, err := metafileInputs(result.Metafile)
	if err != nil {
		return nil, err
	}

	return &BundleOutput{
		Code:     code,
		Modules:  modules,
		Warnings: filterWarnings(result.Warnings),
	}, nil
}

// loadStylesheet reads a stylesheet, applies the transforms in order and
// wraps the final text into a stylesheet module.
func (b *ESBuildBundler) loadStylesheet(ctx context.Context, path string) (string, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- path resolved by esbuild from the import graph
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrReadSource, path, err)
	}

	source := string(raw)
	for _, t := range b.Transforms {
		out, ok, err := t.Transform(ctx, source, path)
		if err != nil {
			return "", err
		}
		if ok {
			source = out
		}
	}

	return stylesheetModule(source)
}

// stylesheetModule wraps stylesheet text into an ES module.
// JSON string encoding escapes "<", so "</style>" or "</script>" inside the
// stylesheet cannot end the inline script element it is embedded in.
func stylesheetModule(css string) (string, error) {
	literal, err := json.Marshal(css)
	if err != nil {
		return "", fmt.Errorf("%w: encoding stylesheet: %v", ErrTransform, err)
	}
	return fmt.Sprintf(stylesheetModuleTemplate, literal), nil
}

// esbuildFormat maps a format name to its esbuild value.
func esbuildFormat(name string) (api.Format, error) {
	switch strings.ToLower(name) {
	case "", FormatESM:
		return api.FormatESModule, nil
	case FormatIIFE:
		return api.FormatIIFE, nil
	default:
		return api.FormatDefault, fmt.Errorf("%w: unknown bundle format %q", ErrTransform, name)
	}
}

// esbuildTarget maps a target name to its esbuild value.
func esbuildTarget(name string) (api.Target, error) {
	switch strings.ToLower(name) {
	case "", "esnext":
		return api.ESNext, nil
	case "es2015":
		return api.ES2015, nil
	case "es2016":
		return api.ES2016, nil
	case "es2017":
		return api.ES2017, nil
	case "es2018":
		return api.ES2018, nil
	case "es2019":
		return api.ES2019, nil
	case "es2020":
		return api.ES2020, nil
	case "es2021":
		return api.ES2021, nil
	case "es2022":
		return api.ES2022, nil
	default:
		return api.DefaultTarget, fmt.Errorf("%w: unknown bundle target %q", ErrTransform, name)
	}
}

// jsOutput returns the emitted JavaScript file of a build.
func jsOutput(files []api.OutputFile) (string, error) {
	for _, f := range files {
		if strings.HasSuffix(f.Path, ".js") {
			return string(f.Contents), nil
		}
	}
	return "", fmt.Errorf("%w: bundler produced no JavaScript output", ErrTransform)
}

// metafile is the subset of the esbuild metafile read after a build.
type metafile struct {
	Inputs map[string]json.RawMessage `json:"inputs"`
}

// metafileInputs lists the modules that took part in the build, sorted.
func metafileInputs(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}

	var meta metafile
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("%w: reading bundle metafile: %v", ErrTransform, err)
	}

	modules := make([]string, 0, len(meta.Inputs))
	for path := range meta.Inputs {
		modules = append(modules, path)
	}
	sort.Strings(modules)
	return modules, nil
}

// filterWarnings drops circular-dependency diagnostics and formats the rest.
func filterWarnings(msgs []api.Message) []string {
	var out []string
	for _, m := range msgs {
		if isCircularDependency(m) {
			continue
		}
		out = append(out, formatMessage(m))
	}
	return out
}

// isCircularDependency reports whether a diagnostic is about an import cycle.
func isCircularDependency(m api.Message) bool {
	return strings.Contains(strings.ToLower(m.ID), "circular") ||
		strings.Contains(strings.ToLower(m.Text), "circular")
}

// formatMessages joins diagnostics into one line for error wrapping.
func formatMessages(msgs []api.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, formatMessage(m))
	}
	return strings.Join(parts, "; ")
}

// formatMessage renders a diagnostic as "file:line:col: text".
func formatMessage(m api.Message) string {
	text := m.Text
	if m.PluginName != "" {
		text = "[" + m.PluginName + "] " + text
	}
	if m.Location == nil {
		return text
	}
	return fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, text)
}
