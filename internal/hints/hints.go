// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-webembed/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for headless browser launch errors.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about raising the page load timeout.
func ForTimeout() string {
	return format("for slow pages, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and, when searched, the user config location.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/webembed.yaml"

	userDir := filepath.Join(".config", "webembed")
	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), filepath.ToSlash(userDir)) {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output write errors.
func ForOutputDirectory() string {
	return format("check the output directory is writable, or set --header/--debug-html")
}

// ForTemplateNotFound lists the built-in header templates.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("built-in templates: " + strings.Join(available, ", ") + "; or pass a .tmpl path")
}

// ForStructural explains what the HTML shell must contain.
func ForStructural(moduleRef, marker string) string {
	return format("the shell needs exactly one <script src=\"" + moduleRef + "\"> element and exactly one " + marker + " comment")
}

// ForAssetRead explains how stylesheet url() paths are resolved.
func ForAssetRead() string {
	return format("url() paths are relative to the stylesheet that declares them")
}

// ForDeviceUnreachable suggests how to point at the device.
func ForDeviceUnreachable() string {
	return format("check the device is powered and reachable, or set --device / WEBEMBED_DEVICE_URL")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
