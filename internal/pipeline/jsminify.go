package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Minifier defines the contract for minifying a code unit.
type Minifier interface {
	Minify(ctx context.Context, source string) (string, error)
}

// ESBuildMinifier minifies JavaScript with esbuild's transform API.
type ESBuildMinifier struct {
	Format string // FormatESM (default) or FormatIIFE
	Target string // empty = esnext
}

// NewESBuildMinifier creates an ESBuildMinifier for ES module output.
func NewESBuildMinifier() *ESBuildMinifier {
	return &ESBuildMinifier{Format: FormatESM}
}

// Minify returns a semantically equivalent, smaller form of js.
// Whitespace, identifiers and syntax are all minified.
func (m *ESBuildMinifier) Minify(ctx context.Context, js string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	format, err := esbuildFormat(m.Format)
	if err != nil {
		return "", err
	}
	target, err := esbuildTarget(m.Target)
	if err != nil {
		return "", err
	}

	result := api.Transform(js, api.TransformOptions{
		Loader:            api.LoaderJS,
		Format:            format,
		Target:            target,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		LogLevel:          api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("%w: minifying script: %s", ErrTransform, formatMessages(result.Errors))
	}

	return strings.TrimSuffix(string(result.Code), "\n"), nil
}
