package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	base    string
	quiet   bool
	verbose bool
}

// pathFlags holds project layout overrides.
type pathFlags struct {
	entry     string
	shell     string
	moduleRef string
	marker    string
	debugHTML string
	header    string
}

// headerFlags holds header generation flags.
type headerFlags struct {
	escape   string
	template string
	typeName string
	variable string
}

// bundleFlags holds bundler flags.
type bundleFlags struct {
	format    string
	target    string
	minifyCSS bool
}

// buildFlags holds all flags for the build command.
type buildFlags struct {
	common commonFlags
	paths  pathFlags
	header headerFlags
	bundle bundleFlags
	dryRun bool
	fs     *flag.FlagSet // kept to tell set flags from defaults
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common commonFlags
	addr   string
	fs     *flag.FlagSet
}

// setFlags holds flags for the set command.
type setFlags struct {
	common  commonFlags
	device  string
	retries uint64
	timeout time.Duration
	fs      *flag.FlagSet
}

// verifyFlags holds flags for the verify command.
type verifyFlags struct {
	common  commonFlags
	timeout time.Duration
	fs      *flag.FlagSet
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
	fs     *flag.FlagSet
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVarP(&f.base, "base", "C", "", "project base directory")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show stage timings and bundled modules")
}

// addPathFlags adds project layout flags to a FlagSet.
func addPathFlags(fs *flag.FlagSet, f *pathFlags) {
	fs.StringVar(&f.entry, "entry", "", "entry module")
	fs.StringVar(&f.shell, "shell", "", "HTML shell")
	fs.StringVar(&f.moduleRef, "module-ref", "", "src of the script tag to replace")
	fs.StringVar(&f.marker, "marker", "", "comment before which the script is injected")
	fs.StringVar(&f.debugHTML, "debug-html", "", "debug HTML output path")
	fs.StringVar(&f.header, "header", "", "header output path")
}

// addHeaderFlags adds header generation flags to a FlagSet.
func addHeaderFlags(fs *flag.FlagSet, f *headerFlags) {
	fs.StringVar(&f.escape, "escape", "", "literal escaping: full, quotes")
	fs.StringVar(&f.template, "template", "", "header template name or .tmpl path")
	fs.StringVar(&f.typeName, "type", "", "type of the header constant")
	fs.StringVar(&f.variable, "variable", "", "name of the header constant")
}

// addBundleFlags adds bundler flags to a FlagSet.
func addBundleFlags(fs *flag.FlagSet, f *bundleFlags) {
	fs.StringVar(&f.format, "format", "", "bundle format: esm, iife")
	fs.StringVar(&f.target, "target", "", "language target, e.g. es2020")
	fs.BoolVar(&f.minifyCSS, "minify-css", true, "minify stylesheets before embedding")
}

// newFlagSet creates a FlagSet that reports errors instead of exiting.
// Usage is printed by the caller.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}

// parseBuildFlags parses build command flags.
func parseBuildFlags(args []string) (*buildFlags, error) {
	f := &buildFlags{fs: newFlagSet("build")}

	addCommonFlags(f.fs, &f.common)
	addPathFlags(f.fs, &f.paths)
	addHeaderFlags(f.fs, &f.header)
	addBundleFlags(f.fs, &f.bundle)
	f.fs.BoolVarP(&f.dryRun, "dry-run", "n", false, "run every stage without writing outputs")

	if err := f.fs.Parse(args); err != nil {
		return nil, err
	}
	if f.fs.NArg() > 0 {
		return nil, unexpectedArgs(f.fs.Args())
	}
	return f, nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string) (*serveFlags, error) {
	f := &serveFlags{fs: newFlagSet("serve")}

	addCommonFlags(f.fs, &f.common)
	f.fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default from config: 127.0.0.1:8080)")

	if err := f.fs.Parse(args); err != nil {
		return nil, err
	}
	if f.fs.NArg() > 0 {
		return nil, unexpectedArgs(f.fs.Args())
	}
	return f, nil
}

// parseSetFlags parses set command flags and returns the key=value args.
func parseSetFlags(args []string) (*setFlags, []string, error) {
	f := &setFlags{fs: newFlagSet("set")}

	addCommonFlags(f.fs, &f.common)
	f.fs.StringVarP(&f.device, "device", "d", "", "device base URL")
	f.fs.Uint64Var(&f.retries, "retries", 2, "retries after a failed connection")
	f.fs.DurationVarP(&f.timeout, "timeout", "t", 5*time.Second, "per request timeout")

	if err := f.fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, f.fs.Args(), nil
}

// parseVerifyFlags parses verify command flags.
func parseVerifyFlags(args []string) (*verifyFlags, error) {
	f := &verifyFlags{fs: newFlagSet("verify")}

	addCommonFlags(f.fs, &f.common)
	f.fs.DurationVarP(&f.timeout, "timeout", "t", 30*time.Second, "page load timeout")

	if err := f.fs.Parse(args); err != nil {
		return nil, err
	}
	if f.fs.NArg() > 0 {
		return nil, unexpectedArgs(f.fs.Args())
	}
	return f, nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string) (*doctorFlags, error) {
	f := &doctorFlags{fs: newFlagSet("doctor")}

	addCommonFlags(f.fs, &f.common)
	f.fs.BoolVar(&f.json, "json", false, "print the report as JSON")

	if err := f.fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// unexpectedArgs reports positional arguments a command does not take.
func unexpectedArgs(args []string) error {
	return fmt.Errorf("unexpected argument: %s", strings.Join(args, " "))
}
