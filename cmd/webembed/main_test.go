package main

// Notes:
// - runMain: we test dispatch and exit codes end to end. Builds run the
//   real pipeline in-process against a project in t.TempDir().
// - serve is not started here (it blocks until a signal); the server is
//   covered by the devserver package tests.
// - hasVerboseFlag / hasHelpFlag: we test the "--" terminator.

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunMain - Dispatch and exit codes
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"version", []string{"webembed", "version"}, ExitSuccess, "webembed dev", ""},
		{"version flag", []string{"webembed", "--version"}, ExitSuccess, "webembed dev", ""},
		{"help", []string{"webembed", "help"}, ExitSuccess, "Commands:", ""},
		{"help build", []string{"webembed", "help", "build"}, ExitSuccess, "--module-ref", ""},
		{"help set", []string{"webembed", "help", "set"}, ExitSuccess, "key=value", ""},
		{"help unknown", []string{"webembed", "help", "deploy"}, ExitUsage, "", "Unknown command: deploy"},
		{"command help flag", []string{"webembed", "verify", "--help"}, ExitSuccess, "headless Chrome", ""},
		{"unknown command", []string{"webembed", "deploy"}, ExitUsage, "", "unknown command: deploy"},
		{"unknown flag", []string{"webembed", "build", "--nope"}, ExitUsage, "", "webembed help build"},
		{"stray argument", []string{"webembed", "build", "extra"}, ExitUsage, "", "unexpected argument"},
		{"set without pairs", []string{"webembed", "set"}, ExitUsage, "", "key=value"},
		{"set malformed pair", []string{"webembed", "set", "novalue"}, ExitUsage, "", "error:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(nil)
			code := runMain(tt.args, env)

			if code != tt.wantCode {
				t.Errorf("runMain(%v) = %d, want %d\nstderr: %s", tt.args, code, tt.wantCode, stderr)
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout missing %q:\n%s", tt.wantStdout, stdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, stderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Build - Build command end to end
// ---------------------------------------------------------------------------

func TestRunMain_Build(t *testing.T) {
	t.Parallel()

	t.Run("default command builds", func(t *testing.T) {
		t.Parallel()

		base := newProject(t)
		env, stdout, stderr := testEnv(nil)

		code := runMain([]string{"webembed", "-C", base}, env)
		if code != ExitSuccess {
			t.Fatalf("exit = %d, stderr: %s", code, stderr)
		}

		header, err := os.ReadFile(filepath.Join(base, "..", "Arduino", "client.h"))
		if err != nil {
			t.Fatalf("header not written: %v", err)
		}
		if !strings.Contains(string(header), "String HTML = \"") {
			t.Errorf("header declaration missing:\n%.200s", header)
		}
		if !strings.Contains(string(header), "webembed build") {
			t.Errorf("header notice should name the command:\n%.200s", header)
		}
		if _, err := os.Stat(filepath.Join(base, "dist.html")); err != nil {
			t.Errorf("debug HTML not written: %v", err)
		}
		for _, want := range []string{"wrote dist.html (", "wrote ../Arduino/client.h ("} {
			if !strings.Contains(stdout.String(), want) {
				t.Errorf("summary missing %q:\n%s", want, stdout)
			}
		}
		if !strings.Contains(stderr.String(), "Building client...") {
			t.Errorf("progress missing from log:\n%s", stderr)
		}
	})

	t.Run("flags override config and env", func(t *testing.T) {
		t.Parallel()

		base := newProject(t)
		writeFile(t, base, "webembed.yaml", "output:\n  header: from-config.h\nheader:\n  variable: PAGE\n")
		env, stdout, stderr := testEnv(map[string]string{"WEBEMBED_HEADER": "from-env.h"})

		code := runMain([]string{"webembed", "build", "-C", base, "--header", "out/from-flag.h", "--type", "std::string"}, env)
		if code != ExitSuccess {
			t.Fatalf("exit = %d, stderr: %s", code, stderr)
		}

		header, err := os.ReadFile(filepath.Join(base, "out", "from-flag.h"))
		if err != nil {
			t.Fatalf("flag header not written: %v", err)
		}
		if !strings.Contains(string(header), "const std::string PAGE = \"") {
			t.Errorf("header should combine flag type and config variable:\n%.200s", header)
		}
		for _, unwanted := range []string{"from-config.h", "from-env.h"} {
			if _, err := os.Stat(filepath.Join(base, unwanted)); err == nil {
				t.Errorf("%s should not be written", unwanted)
			}
		}
		if !strings.Contains(stdout.String(), "out/from-flag.h") {
			t.Errorf("summary should name the flag path:\n%s", stdout)
		}
	})

	t.Run("env overrides config", func(t *testing.T) {
		t.Parallel()

		base := newProject(t)
		writeFile(t, base, "webembed.yaml", "output:\n  header: from-config.h\n")
		env, _, stderr := testEnv(map[string]string{"WEBEMBED_HEADER": "from-env.h"})

		if code := runMain([]string{"webembed", "-C", base, "-q"}, env); code != ExitSuccess {
			t.Fatalf("exit = %d, stderr: %s", code, stderr)
		}
		if _, err := os.Stat(filepath.Join(base, "from-env.h")); err != nil {
			t.Errorf("env header not written: %v", err)
		}
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		t.Parallel()

		base := newProject(t)
		env, stdout, stderr := testEnv(nil)

		if code := runMain([]string{"webembed", "build", "-C", base, "--dry-run"}, env); code != ExitSuccess {
			t.Fatalf("exit = %d, stderr: %s", code, stderr)
		}
		if _, err := os.Stat(filepath.Join(base, "dist.html")); !os.IsNotExist(err) {
			t.Errorf("dist.html should not exist, stat error: %v", err)
		}
		if !strings.Contains(stdout.String(), "would write dist.html") {
			t.Errorf("summary should announce a dry run:\n%s", stdout)
		}
	})

	t.Run("verbose lists stages and modules", func(t *testing.T) {
		t.Parallel()

		base := newProject(t)
		env, stdout, stderr := testEnv(nil)

		if code := runMain([]string{"webembed", "-C", base, "-v", "-n"}, env); code != ExitSuccess {
			t.Fatalf("exit = %d, stderr: %s", code, stderr)
		}
		for _, want := range []string{"bundle", "minify-html", "total", "src/greet.js"} {
			if !strings.Contains(stdout.String(), want) {
				t.Errorf("verbose summary missing %q:\n%s", want, stdout)
			}
		}
	})

	t.Run("quiet prints nothing", func(t *testing.T) {
		t.Parallel()

		base := newProject(t)
		env, stdout, stderr := testEnv(nil)

		if code := runMain([]string{"webembed", "-C", base, "-q"}, env); code != ExitSuccess {
			t.Fatalf("exit = %d, stderr: %s", code, stderr)
		}
		if stdout.Len() != 0 || stderr.Len() != 0 {
			t.Errorf("quiet build produced output:\nstdout: %s\nstderr: %s", stdout, stderr)
		}
	})
}

func TestRunMain_BuildFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(t *testing.T, base string)
		args     []string
		wantCode int
		wantHint string
	}{
		{
			name:     "missing shell",
			mutate:   func(t *testing.T, base string) { _ = os.Remove(filepath.Join(base, "src", "index.html")) },
			wantCode: ExitIO,
		},
		{
			name: "missing marker",
			mutate: func(t *testing.T, base string) {
				writeFile(t, base, "src/index.html", strings.Replace(testShell, "<!--inline main.js inject position-->", "", 1))
			},
			wantCode: ExitUsage,
			wantHint: "exactly one",
		},
		{
			name:     "syntax error",
			mutate:   func(t *testing.T, base string) { writeFile(t, base, "src/greet.js", "export const = ;\n") },
			wantCode: ExitTransform,
		},
		{
			name:     "missing config file",
			mutate:   func(*testing.T, string) {},
			args:     []string{"-c", "nowhere/webembed.yaml"},
			wantCode: ExitUsage,
			wantHint: "--config",
		},
		{
			name:     "invalid escape flag",
			mutate:   func(*testing.T, string) {},
			args:     []string{"--escape", "raw"},
			wantCode: ExitUsage,
		},
		{
			name:     "unknown template",
			mutate:   func(*testing.T, string) {},
			args:     []string{"--template", "platformio"},
			wantCode: ExitUsage,
			wantHint: "built-in templates",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			base := newProject(t)
			tt.mutate(t, base)
			env, _, stderr := testEnv(nil)

			args := append([]string{"webembed", "build", "-C", base}, tt.args...)
			code := runMain(args, env)

			if code != tt.wantCode {
				t.Errorf("exit = %d, want %d\nstderr: %s", code, tt.wantCode, stderr)
			}
			if !strings.Contains(stderr.String(), "error:") {
				t.Errorf("stderr should report the error:\n%s", stderr)
			}
			if tt.wantHint != "" && !strings.Contains(stderr.String(), tt.wantHint) {
				t.Errorf("stderr missing hint %q:\n%s", tt.wantHint, stderr)
			}
			if _, err := os.Stat(filepath.Join(base, "dist.html")); !os.IsNotExist(err) {
				t.Errorf("failed build must not write dist.html (stat: %v)", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFlagScanners - Pre-parse flag detection
// ---------------------------------------------------------------------------

func TestFlagScanners(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args        []string
		wantVerbose bool
		wantHelp    bool
	}{
		{nil, false, false},
		{[]string{"build", "-v"}, true, false},
		{[]string{"--verbose"}, true, false},
		{[]string{"serve", "--help"}, false, true},
		{[]string{"-h"}, false, true},
		{[]string{"--", "-v", "-h"}, false, false},
		{[]string{"-vq"}, false, false},
	}

	for _, tt := range tests {
		if got := hasVerboseFlag(tt.args); got != tt.wantVerbose {
			t.Errorf("hasVerboseFlag(%v) = %v, want %v", tt.args, got, tt.wantVerbose)
		}
		if got := hasHelpFlag(tt.args); got != tt.wantHelp {
			t.Errorf("hasHelpFlag(%v) = %v, want %v", tt.args, got, tt.wantHelp)
		}
	}
}

func TestRunMain_VerifyBeforeBuild(t *testing.T) {
	t.Parallel()

	env, _, stderr := testEnv(nil)
	code := runMain([]string{"webembed", "verify", "-C", t.TempDir()}, env)

	if code != ExitIO {
		t.Errorf("exit = %d, want %d", code, ExitIO)
	}
	if !strings.Contains(stderr.String(), "run webembed build") {
		t.Errorf("stderr should tell to build first:\n%s", stderr)
	}
}
