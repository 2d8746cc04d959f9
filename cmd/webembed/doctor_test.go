package main

// Notes:
// - Chrome detection is pinned with ROD_BROWSER_BIN pointing at a missing
//   file so results do not depend on the host; the launcher lookup itself
//   is rod's.
// - Container detection through /.dockerenv depends on the host and is
//   only tested through the explicit WEBEMBED_CONTAINER override.

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

// doctorVars pins browser detection for deterministic results.
func doctorVars(extra map[string]string) map[string]string {
	vars := map[string]string{"ROD_BROWSER_BIN": filepath.Join("/nonexistent", "chrome")}
	for k, v := range extra {
		vars[k] = v
	}
	return vars
}

func TestRunDoctorCmd_ReadyProject(t *testing.T) {
	t.Parallel()

	base := newProject(t)
	env, stdout, _ := testEnv(doctorVars(nil))

	code := runDoctorCmd([]string{"-C", base, "--json"}, env)
	if code != ExitSuccess {
		t.Fatalf("exit = %d, output:\n%s", code, stdout)
	}

	var result doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if !result.Project.EntryFound || !result.Project.ShellFound {
		t.Errorf("project inputs not found: %+v", result.Project)
	}
	if !result.Project.DebugWritable {
		t.Error("debug HTML directory should be writable")
	}
	if result.Project.HeaderWritable {
		t.Error("header directory does not exist yet and should not be reported writable")
	}
	if result.Chrome.Found {
		t.Error("Chrome should not be found at a missing path")
	}
	if result.Status != "warnings" {
		t.Errorf("Status = %q, want warnings", result.Status)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}

func TestRunDoctorCmd_MissingSources(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv(doctorVars(nil))

	code := runDoctorCmd([]string{"-C", t.TempDir()}, env)
	if code != ExitGeneral {
		t.Errorf("exit = %d, want %d", code, ExitGeneral)
	}

	out := stdout.String()
	for _, want := range []string{
		"webembed doctor",
		"[ERROR] Entry: src/main.js",
		"[ERROR] Shell: src/index.html",
		"Entry module not found",
		"Status: Not ready",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunDoctorCmd_InvalidConfig(t *testing.T) {
	t.Parallel()

	base := newProject(t)
	writeFile(t, base, "webembed.yaml", "header:\n  escape: none\n")
	env, stdout, _ := testEnv(doctorVars(nil))

	if code := runDoctorCmd([]string{"-C", base}, env); code != ExitGeneral {
		t.Errorf("exit = %d, want %d", code, ExitGeneral)
	}
	if !strings.Contains(stdout.String(), "Configuration could not be resolved") {
		t.Errorf("output should report the config error:\n%s", stdout)
	}
}

func TestRunDoctorCmd_BadFlag(t *testing.T) {
	t.Parallel()

	env, _, stderr := testEnv(nil)
	if code := runDoctorCmd([]string{"--nope"}, env); code != ExitUsage {
		t.Errorf("exit = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "nope") {
		t.Errorf("stderr should name the flag: %s", stderr)
	}
}

func TestCheckEnvironment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		vars          map[string]string
		wantContainer bool
		wantCI        bool
		wantWarning   bool
	}{
		{"plain host", map[string]string{}, false, false, false},
		{"ci without sandbox override", map[string]string{"GITHUB_ACTIONS": "true"}, false, true, true},
		{"ci with sandbox disabled", map[string]string{"CI": "1", "ROD_NO_SANDBOX": "1"}, false, true, false},
		{"explicit container", map[string]string{"WEBEMBED_CONTAINER": "1", "ROD_NO_SANDBOX": "1"}, true, false, false},
		{"kubernetes", map[string]string{"KUBERNETES_SERVICE_HOST": "10.0.0.1"}, true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			getenv := func(k string) string { return tt.vars[k] }
			result := &doctorResult{Env: envInfo{NoSandbox: getenv("ROD_NO_SANDBOX")}}
			checkEnvironment(result, getenv)

			// /.dockerenv on the host may flag a container regardless.
			if tt.wantContainer && !result.Env.Container {
				t.Error("Container = false, want true")
			}
			if result.Env.CI != tt.wantCI {
				t.Errorf("CI = %v, want %v", result.Env.CI, tt.wantCI)
			}
			if tt.wantWarning && len(result.Warnings) == 0 {
				t.Error("expected a sandbox warning")
			}
		})
	}
}
