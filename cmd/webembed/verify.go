package main

import (
	"context"
	"fmt"
	"io"

	"github.com/alnah/go-webembed/internal/browser"
	"github.com/alnah/go-webembed/internal/fileutil"
)

// runVerify executes the verify command on the built debug HTML.
func runVerify(ctx context.Context, args []string, env *Environment) (*project, error) {
	flags, err := parseVerifyFlags(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	p, err := resolveProject(flags.common, env)
	if err != nil {
		return nil, err
	}

	page := p.path(p.cfg.Output.DebugHTML)
	if !fileutil.FileExists(page) {
		return p, fmt.Errorf("%w: %s not built yet: run webembed build", browser.ErrPageLoad, page)
	}

	v := browser.NewVerifier(newLogger(env, flags.common))
	v.Timeout = flags.timeout

	report, err := v.Verify(ctx, page)
	if report != nil && !flags.common.quiet {
		printReport(env.Stdout, report)
	}
	return p, err
}

// printReport lists what the page reported while loading.
func printReport(w io.Writer, r *browser.Report) {
	for _, e := range r.Exceptions {
		fmt.Fprintf(w, "  [ERROR] %s\n", e)
	}
	for _, c := range r.ConsoleErrors {
		fmt.Fprintf(w, "  [WARN] console.error: %s\n", c)
	}
	if len(r.Exceptions) == 0 {
		fmt.Fprintf(w, "ok %s\n", r.URL)
	}
}
