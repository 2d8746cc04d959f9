package webembed

import (
	"errors"

	"github.com/alnah/go-webembed/internal/assets"
	"github.com/alnah/go-webembed/internal/browser"
	"github.com/alnah/go-webembed/internal/device"
	"github.com/alnah/go-webembed/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	// Read errors.
	ErrAssetRead  = pipeline.ErrAssetRead
	ErrReadSource = pipeline.ErrReadSource

	// Transform errors (bundler, minifiers, header template).
	ErrTransform    = pipeline.ErrTransform
	ErrHeaderRender = pipeline.ErrHeaderRender

	// Structural errors: the shell lacks, or duplicates, the entry script
	// tag or the injection marker.
	ErrStructural = pipeline.ErrStructural

	// ErrWriteOutput indicates an output file could not be staged or renamed.
	ErrWriteOutput = errors.New("failed to write output")

	// ErrInvalidInput indicates Input fields that cannot describe a build.
	ErrInvalidInput = errors.New("invalid build input")

	// ErrLiteralMismatch indicates the escaped header literal would not
	// reproduce the minified HTML once compiled.
	ErrLiteralMismatch = errors.New("header literal does not round-trip")

	// Asset errors.
	ErrTemplateNotFound = assets.ErrTemplateNotFound

	// Settings errors.
	ErrNetwork         = device.ErrNetwork
	ErrSettingRejected = device.ErrSettingRejected

	// Verification errors.
	ErrBrowserConnect = browser.ErrBrowserConnect
	ErrVerifyFailed   = browser.ErrVerifyFailed
)
