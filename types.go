package webembed

import (
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-webembed/internal/pipeline"
)

// Default project layout, relative to Input.BaseDir.
const (
	DefaultEntry     = "src/main.js"
	DefaultShell     = "src/index.html"
	DefaultDebugHTML = "dist.html"
	DefaultHeader    = "../Arduino/client.h"
	DefaultModuleRef = pipeline.DefaultModuleRef
	DefaultMarker    = pipeline.DefaultMarker
)

// EscapeMode selects how the HTML is escaped into the header literal.
type EscapeMode = pipeline.EscapeMode

// Escape modes.
const (
	// EscapeFull escapes backslashes, double quotes, newlines and carriage
	// returns. The compiled literal always equals the minified HTML.
	EscapeFull = pipeline.EscapeFull

	// EscapeQuotes escapes double quotes only, byte for byte like older
	// generated headers. Backslashes in the HTML are then reinterpreted
	// by the compiler.
	EscapeQuotes = pipeline.EscapeQuotes
)

// Bundle output formats.
const (
	FormatESM  = pipeline.FormatESM
	FormatIIFE = pipeline.FormatIIFE
)

// Build stage names, as reported in Result.Stages.
const (
	StageBundle     = "bundle"
	StageMinifyJS   = "minify-js"
	StageCompose    = "compose"
	StageMinifyHTML = "minify-html"
	StageHeader     = "header"
	StageWrite      = "write"
)

// Input describes one build. Empty fields take the Default* values.
type Input struct {
	BaseDir   string     // project root; relative paths resolve here (empty = current directory)
	Entry     string     // entry module
	Shell     string     // HTML shell
	ModuleRef string     // reference identifying the entry script tag in the shell
	Marker    string     // comment before which the inline script is injected
	DebugHTML string     // debug copy of the minified HTML
	Header    string     // generated header file
	Type      string     // string type of the header constant (default: "String")
	Variable  string     // header constant name (default: "HTML")
	Escape    EscapeMode // literal escaping (default: EscapeFull)
	DryRun    bool       // run every stage but write nothing
}

// withDefaults returns a copy of in with empty fields filled.
func (in Input) withDefaults() Input {
	fill := func(field *string, def string) {
		if strings.TrimSpace(*field) == "" {
			*field = def
		}
	}
	fill(&in.Entry, DefaultEntry)
	fill(&in.Shell, DefaultShell)
	fill(&in.ModuleRef, DefaultModuleRef)
	fill(&in.Marker, DefaultMarker)
	fill(&in.DebugHTML, DefaultDebugHTML)
	fill(&in.Header, DefaultHeader)
	fill(&in.Type, pipeline.DefaultHeaderType)
	fill(&in.Variable, pipeline.DefaultHeaderVariable)
	if in.Escape == "" {
		in.Escape = EscapeFull
	}
	return in
}

// validate checks a defaulted Input.
func (in Input) validate() error {
	if _, err := pipeline.ParseEscapeMode(string(in.Escape)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !strings.HasPrefix(in.Marker, "<!--") || !strings.HasSuffix(in.Marker, "-->") {
		return fmt.Errorf("%w: marker %q is not an HTML comment", ErrInvalidInput, in.Marker)
	}
	if in.DebugHTML == in.Header {
		return fmt.Errorf("%w: debug HTML and header share the path %q", ErrInvalidInput, in.Header)
	}
	return nil
}

// StageTiming is the wall time spent in one build stage.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Result holds the outputs of a build.
type Result struct {
	HTML          string        // minified HTML, also the debug copy content
	Header        string        // rendered header file
	JS            string        // minified bundle as injected
	Modules       []string      // bundled input files, relative to BaseDir
	Warnings      []string      // bundler diagnostics worth reporting
	DebugHTMLPath string        // absolute path of the debug copy
	HeaderPath    string        // absolute path of the header
	Stages        []StageTiming // per-stage durations, in execution order
}

// Duration returns the total time of all stages.
func (r *Result) Duration() time.Duration {
	var total time.Duration
	for _, s := range r.Stages {
		total += s.Duration
	}
	return total
}
