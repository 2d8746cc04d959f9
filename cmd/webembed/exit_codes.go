package main

import (
	"errors"
	"os"
	"strings"

	webembed "github.com/alnah/go-webembed"
	"github.com/alnah/go-webembed/internal/assets"
	"github.com/alnah/go-webembed/internal/browser"
	"github.com/alnah/go-webembed/internal/config"
	"github.com/alnah/go-webembed/internal/hints"
)

// Exit codes for the webembed CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // Successful run
	ExitGeneral   = 1 // General/unexpected error, failed verification
	ExitUsage     = 2 // Invalid flags, config, input or shell structure
	ExitIO        = 3 // Missing sources, unreadable assets, unwritable outputs
	ExitTransform = 4 // Bundler, minifier or header template failures
	ExitNetwork   = 5 // Device unreachable or setting rejected
)

// ErrUsage marks command line mistakes.
var ErrUsage = errors.New("usage error")

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Network errors (exit 5)
	if errors.Is(err, webembed.ErrNetwork) ||
		errors.Is(err, webembed.ErrSettingRejected) {
		return ExitNetwork
	}

	// Usage/config/structure errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, webembed.ErrInvalidInput) ||
		errors.Is(err, webembed.ErrStructural) ||
		errors.Is(err, webembed.ErrTemplateNotFound) ||
		errors.Is(err, webembed.ErrLiteralMismatch) {
		return ExitUsage
	}

	// Transform errors (exit 4)
	if errors.Is(err, webembed.ErrTransform) ||
		errors.Is(err, webembed.ErrHeaderRender) {
		return ExitTransform
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, webembed.ErrAssetRead) ||
		errors.Is(err, webembed.ErrReadSource) ||
		errors.Is(err, webembed.ErrWriteOutput) ||
		errors.Is(err, browser.ErrPageLoad) {
		return ExitIO
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, p *project) string {
	moduleRef, marker := config.DefaultModuleRef, config.DefaultMarker
	if p != nil {
		moduleRef, marker = p.cfg.ModuleRef, p.cfg.Marker
	}

	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(triedPaths(err))
	case errors.Is(err, webembed.ErrStructural):
		return hints.ForStructural(moduleRef, marker)
	case errors.Is(err, webembed.ErrTemplateNotFound):
		return hints.ForTemplateNotFound(assets.BuiltinTemplates())
	case errors.Is(err, webembed.ErrAssetRead):
		return hints.ForAssetRead()
	case errors.Is(err, webembed.ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, webembed.ErrNetwork):
		return hints.ForDeviceUnreachable()
	case errors.Is(err, webembed.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, browser.ErrPageLoad):
		return hints.ForTimeout()
	}
	return ""
}

// triedPaths extracts the candidate paths listed by a name lookup failure.
func triedPaths(err error) []string {
	_, list, ok := strings.Cut(err.Error(), "tried ")
	if !ok {
		return nil
	}
	return strings.Split(list, ", ")
}
