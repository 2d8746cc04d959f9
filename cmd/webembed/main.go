package main

import (
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-webembed/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := DefaultEnv()

	// Configure GOMAXPROCS, logging the decision only in verbose mode.
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasVerboseFlag(os.Args[1:]) {
		log := logging.New(logging.Config{Out: env.Stderr, Level: logging.LevelDebug})
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			log.Debug().Msgf(format, args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, env))
}

// hasVerboseFlag reports whether -v or --verbose appears before "--".
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		switch a {
		case "--":
			return false
		case "-v", "--verbose":
			return true
		}
	}
	return false
}
