package main

import (
	"context"
	"fmt"

	"github.com/alnah/go-webembed/internal/devserver"
)

// runServe executes the serve command. It blocks until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) (*project, error) {
	flags, err := parseServeFlags(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	p, err := resolveProject(flags.common, env)
	if err != nil {
		return nil, err
	}
	if flags.fs.Changed("addr") {
		p.cfg.Serve.Addr = flags.addr
	}

	srv := devserver.New(devserver.Config{
		Addr:      p.cfg.Serve.Addr,
		DebugHTML: p.path(p.cfg.Output.DebugHTML),
		Log:       newLogger(env, flags.common),
	})
	return p, srv.ListenAndServe(ctx)
}
