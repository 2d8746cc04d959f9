package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName checks that a template name is a bare file stem.
// Separators and dots are rejected, which rules out traversal ("..") and
// extension tricks ("x.tmpl.bak").
func ValidateAssetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	case strings.ContainsAny(name, `/\.`):
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	default:
		return nil
	}
}
