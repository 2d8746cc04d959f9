package pipeline

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tdewolff/minify/v2"
	cssmin "github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/sync/errgroup"
)

// stylesheetSegment is either literal stylesheet text or one declaration.
type stylesheetSegment struct {
	text   string // literal text, or the property name for declarations
	value  string
	isDecl bool
	inline bool // declaration value contains url(
}

// InlineStylesheet rewrites every url(...) declaration of a stylesheet into a
// data URI. Declarations are resolved concurrently, at most limit at a time
// (limit < 1 means GOMAXPROCS), and all of them complete before the rewritten
// stylesheet is returned. ownerPath is the stylesheet's own path.
//
// Stylesheets without any url( are returned byte-for-byte unchanged. Other
// stylesheets are re-serialized from the parsed grammar, so insignificant
// whitespace may differ from the source.
//
// Only the first url(...) of each declaration is inlined. Declarations
// inside nested style rules are not recognized by the grammar and are kept
// as written. LocalReferences lists what is left behind.
func InlineStylesheet(ctx context.Context, source, ownerPath string, limit int) (string, error) {
	if !strings.Contains(source, "url(") {
		return source, nil
	}

	segments, err := splitDeclarations(source)
	if err != nil {
		return "", fmt.Errorf("%w: parsing %s: %v", ErrTransform, ownerPath, err)
	}

	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range segments {
		if !segments[i].inline {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			value, err := InlineURL(segments[i].value, ownerPath)
			if err != nil {
				return err
			}
			segments[i].value = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(source))
	for _, s := range segments {
		if !s.isDecl {
			b.WriteString(s.text)
			continue
		}
		b.WriteString(s.text)
		b.WriteString(":")
		b.WriteString(s.value)
		b.WriteString(";")
	}
	return b.String(), nil
}

// splitDeclarations walks the stylesheet grammar and separates declarations
// from the surrounding text so they can be rewritten independently.
func splitDeclarations(source string) ([]stylesheetSegment, error) {
	p := css.NewParser(parse.NewInputString(source), false)

	var (
		segments []stylesheetSegment
		literal  strings.Builder
	)
	flush := func() {
		if literal.Len() > 0 {
			segments = append(segments, stylesheetSegment{text: literal.String()})
			literal.Reset()
		}
	}

	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if p.HasParseError() {
				// Malformed declarations are kept as written
				literal.WriteString(joinTokens(p.Values()))
				continue
			}
			if err := p.Err(); err != nil && err != io.EOF {
				return nil, err
			}
			flush()
			return segments, nil

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			flush()
			value := joinTokens(p.Values())
			segments = append(segments, stylesheetSegment{
				text:   string(data),
				value:  value,
				isDecl: true,
				inline: strings.Contains(value, "url("),
			})

		case css.AtRuleGrammar, css.BeginAtRuleGrammar:
			literal.Write(data)
			values := p.Values()
			if len(values) > 0 && values[0].TokenType != css.WhitespaceToken {
				literal.WriteString(" ")
			}
			literal.WriteString(joinTokens(values))
			if gt == css.BeginAtRuleGrammar {
				literal.WriteString("{")
			} else {
				literal.WriteString(";")
			}

		case css.QualifiedRuleGrammar:
			literal.Write(data)
			literal.WriteString(joinTokens(p.Values()))
			literal.WriteString(",")

		case css.BeginRulesetGrammar:
			literal.Write(data)
			literal.WriteString(joinTokens(p.Values()))
			literal.WriteString("{")

		default:
			// Comments, closing braces and stray tokens
			literal.Write(data)
		}
	}
}

// joinTokens concatenates the raw text of grammar values.
func joinTokens(tokens []css.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.Write(t.Data)
	}
	return b.String()
}

// URLInliner is the stylesheet Transform that inlines url(...) assets.
type URLInliner struct {
	// Concurrency bounds parallel asset reads per stylesheet (0 = GOMAXPROCS).
	Concurrency int
	// Log receives a warning for each local reference left un-inlined.
	Log zerolog.Logger
}

// Transform inlines url(...) references of stylesheet modules.
// Non-stylesheet modules are left to the next transform.
func (u *URLInliner) Transform(ctx context.Context, source, id string) (string, bool, error) {
	if !IsStylesheet(id) {
		return "", false, nil
	}

	out, err := InlineStylesheet(ctx, source, id, u.Concurrency)
	if err != nil {
		return "", false, err
	}
	for _, ref := range LocalReferences(out) {
		u.Log.Warn().Str("stylesheet", id).Str("url", ref).
			Msg("asset reference not inlined; the page will not be self-contained")
	}
	return out, true, nil
}

// CSSMinifier is the stylesheet Transform that minifies CSS text.
// Register it before URLInliner: minifying re-encodes base64 data URIs.
type CSSMinifier struct {
	m *minify.M
}

// NewCSSMinifier creates a CSSMinifier backed by tdewolff/minify.
func NewCSSMinifier() *CSSMinifier {
	m := minify.New()
	m.AddFunc(mediaTypeCSS, cssmin.Minify)
	return &CSSMinifier{m: m}
}

// Transform minifies stylesheet modules.
func (c *CSSMinifier) Transform(ctx context.Context, source, id string) (string, bool, error) {
	if !IsStylesheet(id) {
		return "", false, nil
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	out, err := c.m.String(mediaTypeCSS, source)
	if err != nil {
		return "", false, fmt.Errorf("%w: minifying %s: %v", ErrTransform, id, err)
	}
	return out, true, nil
}

// IsStylesheet reports whether a module identity names a CSS file.
func IsStylesheet(id string) bool {
	return strings.HasSuffix(strings.ToLower(id), ".css")
}
