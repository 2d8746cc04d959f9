package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alnah/go-webembed/internal/logging"
)

// command runs one subcommand. The returned project, when resolved,
// lets error hints name the configured paths.
type command func(ctx context.Context, args []string, env *Environment) (*project, error)

// commands maps subcommand names to their implementation.
var commands = map[string]command{
	"build":  runBuild,
	"serve":  runServe,
	"set":    runSet,
	"verify": runVerify,
}

// runMain dispatches args (including the program name) and returns the
// process exit code.
func runMain(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	rest := args[1:]
	name := "build"
	if len(rest) > 0 && (rest[0] == "--version" || !strings.HasPrefix(rest[0], "-")) {
		name, rest = rest[0], rest[1:]
	}

	switch name {
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "webembed %s\n", Version)
		return ExitSuccess
	case "help":
		return runHelp(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	}

	if hasHelpFlag(rest) {
		return runHelp([]string{name}, env)
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", name)
		printUsage(env.Stderr)
		return ExitUsage
	}

	p, err := cmd(ctx, rest, env)
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, p))
	if errors.Is(err, ErrUsage) {
		fmt.Fprintf(env.Stderr, "run 'webembed help %s' for usage\n", name)
	}
	return exitCodeFor(err)
}

// hasHelpFlag reports whether -h or --help appears before "--".
func hasHelpFlag(args []string) bool {
	for _, a := range args {
		switch a {
		case "--":
			return false
		case "-h", "--help":
			return true
		}
	}
	return false
}

// newLogger creates the operator log on stderr for the given flags.
func newLogger(env *Environment, flags commonFlags) zerolog.Logger {
	return logging.New(logging.Config{
		Out:     env.Stderr,
		Level:   logging.LevelFor(flags.quiet, flags.verbose),
		NoColor: env.NoColor,
	})
}
