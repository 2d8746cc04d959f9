package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed templates/*.tmpl
var templates embed.FS

// EmbeddedLoader loads templates compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadTemplate loads a built-in template by name.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := templates.ReadFile("templates/" + name + templateExt)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	return string(content), nil
}

// Names lists the built-in template names, sorted.
func (e *EmbeddedLoader) Names() []string {
	entries, err := fs.ReadDir(templates, "templates")
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if name, ok := strings.CutSuffix(entry.Name(), templateExt); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Compile-time interface check.
var _ Loader = (*EmbeddedLoader)(nil)
