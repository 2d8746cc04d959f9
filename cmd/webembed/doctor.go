package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-webembed/internal/fileutil"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Project  projectInfo `json:"project"`
	Chrome   chromeInfo  `json:"chrome"`
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// projectInfo holds the resolved project layout and its checks.
type projectInfo struct {
	BaseDir        string `json:"base_dir"`
	Config         string `json:"config,omitempty"`
	Entry          string `json:"entry"`
	EntryFound     bool   `json:"entry_found"`
	Shell          string `json:"shell"`
	ShellFound     bool   `json:"shell_found"`
	DebugHTML      string `json:"debug_html"`
	DebugWritable  bool   `json:"debug_html_writable"`
	Header         string `json:"header"`
	HeaderWritable bool   `json:"header_writable"`
}

// chromeInfo holds Chrome/Chromium detection results.
// Chrome is only needed by verify, so a missing browser is a warning.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// lookPath locates a browser binary. Replaced in tests.
var lookPath = launcher.LookPath

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = usage.
func runDoctorCmd(args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	result := runDoctor(flags.common, env)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(flags commonFlags, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkProject(result, flags, env)
	checkChrome(result)
	checkEnvironment(result, env.Getenv)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkProject resolves the configuration and checks the build inputs
// exist and the output directories accept files.
func checkProject(result *doctorResult, flags commonFlags, env *Environment) {
	p, err := resolveProject(flags, env)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Configuration: %v", err))
		return
	}

	info := &result.Project
	info.BaseDir = p.baseDir
	info.Config = p.configPath
	info.Entry = p.cfg.Entry
	info.Shell = p.cfg.Shell
	info.DebugHTML = p.cfg.Output.DebugHTML
	info.Header = p.cfg.Output.Header

	if err := p.cfg.Validate(); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Configuration: %v", err))
	}

	info.EntryFound = fileutil.FileExists(p.path(p.cfg.Entry))
	if !info.EntryFound {
		result.Errors = append(result.Errors, "Entry module not found: "+p.path(p.cfg.Entry))
	}
	info.ShellFound = fileutil.FileExists(p.path(p.cfg.Shell))
	if !info.ShellFound {
		result.Errors = append(result.Errors, "HTML shell not found: "+p.path(p.cfg.Shell))
	}

	info.DebugWritable = checkOutputDir(result, p.path(p.cfg.Output.DebugHTML))
	info.HeaderWritable = checkOutputDir(result, p.path(p.cfg.Output.Header))
}

// checkOutputDir reports whether the directory of an output accepts files.
// A missing directory is created at build time, so only a warning.
func checkOutputDir(result *doctorResult, output string) bool {
	dir := filepath.Dir(output)
	err := fileutil.CheckWritableDir(dir)
	switch {
	case err == nil:
		return true
	case os.IsNotExist(err):
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Output directory %s does not exist yet (created on build)", dir))
	default:
		result.Errors = append(result.Errors,
			fmt.Sprintf("Output directory not writable: %s: %v", dir, err))
	}
	return false
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = lookPath()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found: verify unavailable. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- browser path from env or launcher lookup
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, getenv func(string) string) {
	result.Env.Container, result.Env.ContainerHint = isContainer(getenv)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1 for verify")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("WEBEMBED_CONTAINER") == "1" {
		return true, "WEBEMBED_CONTAINER=1"
	}
	if fileutil.FileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used for staged outputs.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	if err := fileutil.CheckWritableDir(tmpDir); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "webembed doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Project")
	if r.Project.BaseDir != "" {
		fmt.Fprintf(w, "  [OK] Base directory: %s\n", r.Project.BaseDir)
		if r.Project.Config != "" {
			fmt.Fprintf(w, "  [OK] Config: %s\n", r.Project.Config)
		} else {
			fmt.Fprintln(w, "  [OK] Config: defaults (no webembed.yaml)")
		}
		printCheck(w, r.Project.EntryFound, "Entry", r.Project.Entry, "ERROR")
		printCheck(w, r.Project.ShellFound, "Shell", r.Project.Shell, "ERROR")
		printCheck(w, r.Project.DebugWritable, "Debug HTML", r.Project.DebugHTML, "WARN")
		printCheck(w, r.Project.HeaderWritable, "Header", r.Project.Header, "WARN")
	} else {
		fmt.Fprintln(w, "  [ERROR] Configuration could not be resolved")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found (needed by verify only)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to build")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

// printCheck prints one project check line.
func printCheck(w io.Writer, ok bool, label, path, failLevel string) {
	if ok {
		fmt.Fprintf(w, "  [OK] %s: %s\n", label, path)
		return
	}
	fmt.Fprintf(w, "  [%s] %s: %s\n", failLevel, label, path)
}
