package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver combines project and embedded loaders with fallback logic.
// When a project loader is configured, it is tried first; the embedded
// templates are used when the name is not found there.
type Resolver struct {
	custom   Loader // nil if no project directory configured
	embedded Loader
}

// NewResolver creates a Resolver.
// If customBasePath is empty, only embedded templates are used.
// Returns an error if customBasePath is set but invalid.
func NewResolver(customBasePath string) (*Resolver, error) {
	resolver := &Resolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadTemplate loads a template by name, project directory first.
func (r *Resolver) LoadTemplate(name string) (string, error) {
	if r.custom == nil {
		return r.embedded.LoadTemplate(name)
	}

	content, err := r.custom.LoadTemplate(name)
	if err == nil {
		return content, nil
	}

	// Validation and I/O errors are not masked by the fallback
	if !errors.Is(err, ErrTemplateNotFound) {
		return "", err
	}

	return r.embedded.LoadTemplate(name)
}

// Resolve loads a template given either a name or a file path.
// Values containing a path separator or ending in .tmpl are read from disk,
// relative paths being resolved against baseDir; anything else is a name.
// An empty value selects DefaultTemplateName.
func (r *Resolver) Resolve(nameOrPath, baseDir string) (string, error) {
	if nameOrPath == "" {
		return r.LoadTemplate(DefaultTemplateName)
	}
	if !isFilePath(nameOrPath) {
		return r.LoadTemplate(nameOrPath)
	}

	path := nameOrPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	content, err := os.ReadFile(path) // #nosec G304 -- user-provided template path
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(content), nil
}

// HasCustomLoader returns true if a project loader is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

// isFilePath returns true if the value names a file rather than a template.
func isFilePath(value string) bool {
	return strings.ContainsAny(value, `/\`) || strings.HasSuffix(value, templateExt)
}

// Compile-time interface check.
var _ Loader = (*Resolver)(nil)
