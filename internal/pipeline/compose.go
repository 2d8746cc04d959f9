package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// DefaultModuleRef is the module reference of the entry script tag.
const DefaultModuleRef = "./main.js"

// DefaultMarker is the comment before which the inline script is injected.
const DefaultMarker = "<!--inline main.js inject position-->"

// closingScriptPattern matches sequences that would end an inline script early.
var closingScriptPattern = regexp.MustCompile(`(?i)</script`)

// Span is a half-open byte range [Start, End) of a document.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Document is an HTML shell being composed into a self-contained page.
// Both operations are single use: the entry script is removed once and
// the inline script is injected once.
type Document struct {
	html      string
	extracted bool
	injected  bool
}

// NewDocument wraps the shell text.
func NewDocument(shell string) *Document {
	return &Document{html: shell}
}

// String returns the current document text.
func (d *Document) String() string {
	return d.html
}

// ExtractScript removes the script element whose start tag contains ref,
// from "<script" through "</script>", and returns the removed span.
// Returns ErrStructural if no element or more than one element matches,
// if the element is not terminated, or if called a second time.
func (d *Document) ExtractScript(ref string) (Span, error) {
	if d.extracted {
		return Span{}, fmt.Errorf("%w: entry script %q already removed", ErrStructural, ref)
	}

	spans, err := scriptSpans(d.html, ref)
	if err != nil {
		return Span{}, err
	}
	switch len(spans) {
	case 0:
		return Span{}, fmt.Errorf("%w: no script tag referencing %q", ErrStructural, ref)
	case 1:
	default:
		return Span{}, fmt.Errorf("%w: %d script tags reference %q, expected one", ErrStructural, len(spans), ref)
	}

	span := spans[0]
	out, err := splice(d.html, span, "")
	if err != nil {
		return Span{}, err
	}
	d.html = out
	d.extracted = true
	return span, nil
}

// InjectScript inserts <script>js</script> immediately before the marker
// comment. The marker itself is kept. Any "</script" inside js is escaped
// as "<\/script" so it cannot close the element.
// Returns ErrStructural if the marker is absent or duplicated, or if called
// a second time.
func (d *Document) InjectScript(marker, js string) error {
	if d.injected {
		return fmt.Errorf("%w: inline script already injected", ErrStructural)
	}

	offsets, err := commentOffsets(d.html, marker)
	if err != nil {
		return err
	}
	switch len(offsets) {
	case 0:
		return fmt.Errorf("%w: injection marker %q not found", ErrStructural, marker)
	case 1:
	default:
		return fmt.Errorf("%w: injection marker %q found %d times, expected one", ErrStructural, marker, len(offsets))
	}

	element := "<script>" + EscapeInlineScript(js) + "</script>"
	out, err := splice(d.html, Span{Start: offsets[0], End: offsets[0]}, element)
	if err != nil {
		return err
	}
	d.html = out
	d.injected = true
	return nil
}

// EscapeInlineScript escapes closing script tags inside inline JavaScript.
func EscapeInlineScript(js string) string {
	return closingScriptPattern.ReplaceAllStringFunc(js, func(m string) string {
		return "<\\/" + m[2:]
	})
}

// splice replaces span with insert and checks that no byte outside the
// span moved or changed.
func splice(doc string, span Span, insert string) (string, error) {
	if span.Start < 0 || span.End > len(doc) || span.Start > span.End {
		return "", fmt.Errorf("%w: span [%d,%d) outside document of %d bytes", ErrStructural, span.Start, span.End, len(doc))
	}

	out := doc[:span.Start] + insert + doc[span.End:]

	if want := len(doc) - span.Len() + len(insert); len(out) != want {
		return "", fmt.Errorf("%w: composed length %d, expected %d", ErrStructural, len(out), want)
	}
	if out[:span.Start] != doc[:span.Start] || out[span.Start+len(insert):] != doc[span.End:] {
		return "", fmt.Errorf("%w: bytes outside [%d,%d) changed", ErrStructural, span.Start, span.End)
	}
	return out, nil
}

// scriptSpans returns the spans of every script element whose start tag
// contains ref.
func scriptSpans(doc, ref string) ([]Span, error) {
	var (
		spans  []Span
		open   = -1
		offset int
	)

	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		tt := z.Next()
		// Copy before TagName, which lowercases the buffer in place
		raw := string(z.Raw())
		start := offset
		offset += len(raw)

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("%w: tokenizing HTML: %v", ErrStructural, err)
			}
			if open != -1 {
				return nil, fmt.Errorf("%w: script tag referencing %q is not closed", ErrStructural, ref)
			}
			return spans, nil

		case html.StartTagToken:
			name, _ := z.TagName()
			if bytes.Equal(name, []byte("script")) && strings.Contains(raw, ref) {
				open = start
			}

		case html.SelfClosingTagToken:
			// <script .../> is not a complete element in HTML
			name, _ := z.TagName()
			if bytes.Equal(name, []byte("script")) && strings.Contains(raw, ref) {
				return nil, fmt.Errorf("%w: script tag referencing %q is not closed", ErrStructural, ref)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if open != -1 && bytes.Equal(name, []byte("script")) {
				spans = append(spans, Span{Start: open, End: offset})
				open = -1
			}
		}
	}
}

// commentOffsets returns the start offset of every comment token whose raw
// text equals marker.
func commentOffsets(doc, marker string) ([]int, error) {
	var (
		offsets []int
		offset  int
	)

	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		tt := z.Next()
		raw := z.Raw()
		start := offset
		offset += len(raw)

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("%w: tokenizing HTML: %v", ErrStructural, err)
			}
			return offsets, nil
		case html.CommentToken:
			if string(raw) == marker {
				offsets = append(offsets, start)
			}
		}
	}
}
