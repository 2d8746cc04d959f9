package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alnah/go-webembed/internal/device"
)

// runSet executes the set command: one request per key=value argument.
func runSet(ctx context.Context, args []string, env *Environment) (*project, error) {
	flags, pairs, err := parseSetFlags(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: set needs at least one key=value argument", ErrUsage)
	}

	changes := make([]device.Setting, 0, len(pairs))
	for _, arg := range pairs {
		s, err := device.ParseSetting(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		changes = append(changes, s)
	}

	p, err := resolveProject(flags.common, env)
	if err != nil {
		return nil, err
	}
	if flags.fs.Changed("device") {
		p.cfg.Device.URL = flags.device
	}

	client, err := device.NewClient(p.cfg.Device.URL,
		device.WithHTTPClient(&http.Client{Timeout: flags.timeout}),
		device.WithRetries(flags.retries),
		device.WithLogger(newLogger(env, flags.common)),
	)
	if err != nil {
		return p, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	return p, client.Set(ctx, changes)
}
