package main

import (
	"io"
	"os"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string
	NoColor bool // disable ANSI colors in log output
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}
