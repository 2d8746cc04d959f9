package pipeline

import "errors"

// Sentinel errors for pipeline stages.
var (
	// ErrAssetRead indicates a stylesheet url(...) target could not be read.
	ErrAssetRead = errors.New("failed to read asset")

	// ErrReadSource indicates a source module could not be read.
	ErrReadSource = errors.New("failed to read source file")

	// ErrTransform indicates the bundler or a minifier rejected its input.
	ErrTransform = errors.New("transform failed")

	// ErrStructural indicates the HTML shell is missing, or duplicates,
	// the entry script tag or the injection marker.
	ErrStructural = errors.New("unexpected HTML shell structure")

	// ErrHeaderRender indicates the header template failed to execute.
	ErrHeaderRender = errors.New("header template rendering failed")
)
