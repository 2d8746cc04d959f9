package pipeline

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alnah/go-webembed/internal/fileutil"
)

// DefaultMediaType is used when no media type can be inferred for an asset.
const DefaultMediaType = "text/plain"

// urlPattern matches a url(...) reference.
// Captures: 1=reference without the surrounding quotes.
var urlPattern = regexp.MustCompile(`url\(\s*["']?([^"')]*?)["']?\s*\)`)

// mediaTypes maps asset extensions to the media type used in data URIs.
// Entries here take precedence over the platform MIME table, which is not
// consistent across operating systems for fonts and SVG.
var mediaTypes = map[string]string{
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".webp":  "image/webp",
	".ico":   "image/x-icon",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
}

// InlineURL rewrites the first url(...) reference of a declaration value into
// a base64 data URI. The reference is resolved against the directory of
// ownerPath, the stylesheet that declares it.
//
// The value is returned unchanged when it has no url(...), when the
// reference is already a data URI, or when it points outside the source tree
// (remote URL or fragment). Returns ErrAssetRead if the file cannot be read.
func InlineURL(value, ownerPath string) (string, error) {
	loc := urlPattern.FindStringSubmatchIndex(value)
	if loc == nil {
		return value, nil
	}

	ref := strings.TrimSpace(value[loc[2]:loc[3]])
	if !isLocalReference(ref) {
		return value, nil
	}

	assetPath := resolveAssetPath(ownerPath, ref)
	content, err := os.ReadFile(assetPath) // #nosec G304 -- path comes from the project's own stylesheets
	if err != nil {
		return "", fmt.Errorf("%w: %s (referenced from %s): %v", ErrAssetRead, assetPath, ownerPath, err)
	}

	dataURI := "url(data:" + MediaType(assetPath) + ";base64," + base64.StdEncoding.EncodeToString(content) + ")"
	return value[:loc[0]] + dataURI + value[loc[1]:], nil
}

// LocalReferences returns the url(...) references of css that still name
// files in the source tree, in order of appearance.
func LocalReferences(css string) []string {
	var refs []string
	for _, m := range urlPattern.FindAllStringSubmatch(css, -1) {
		if ref := strings.TrimSpace(m[1]); isLocalReference(ref) {
			refs = append(refs, ref)
		}
	}
	return refs
}

// MediaType infers the data URI media type from a file name.
func MediaType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if mt, ok := mediaTypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		// Drop parameters such as "; charset=utf-8"
		if idx := strings.Index(mt, ";"); idx != -1 {
			mt = strings.TrimSpace(mt[:idx])
		}
		return mt
	}
	return DefaultMediaType
}

// isLocalReference returns true if the reference names a file in the source tree.
func isLocalReference(ref string) bool {
	if ref == "" {
		return false
	}

	lower := strings.ToLower(ref)
	if fileutil.IsURL(lower) ||
		strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(lower, "//") {
		return false
	}

	// Fragment-only references point into an SVG document already in the page
	return !strings.HasPrefix(ref, "#")
}

// resolveAssetPath resolves ref against the directory of the declaring file.
// Query strings and fragments (e.g. "font.woff?#iefix") are not part of the path.
func resolveAssetPath(ownerPath, ref string) string {
	if idx := strings.IndexAny(ref, "?#"); idx != -1 {
		ref = ref[:idx]
	}

	p := filepath.FromSlash(ref)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(filepath.Dir(ownerPath), p)
}
