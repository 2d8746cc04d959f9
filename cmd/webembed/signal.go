package main

import (
	"context"
	"os/signal"
)

// notifyContext returns a context canceled on the first shutdown signal.
// A build in progress stops at its next stage boundary; serve shuts down
// gracefully. Call stop() to release resources.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
