package pipeline

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// EscapeMode selects how HTML is escaped into a string literal.
type EscapeMode string

const (
	// EscapeFull escapes backslashes, quotes, newlines and carriage returns.
	// The literal always unescapes to the original text.
	EscapeFull EscapeMode = "full"

	// EscapeQuotes escapes double quotes only. Backslashes and line breaks
	// in the input are emitted as is.
	EscapeQuotes EscapeMode = "quotes"
)

// Defaults for the generated header.
const (
	DefaultHeaderType     = "String"
	DefaultHeaderVariable = "HTML"
	DefaultGenerator      = "webembed"
	DefaultCommand        = "webembed build"
)

var (
	fullEscaper   = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
	quotesEscaper = strings.NewReplacer(`"`, `\"`)
)

// ParseEscapeMode validates an escape mode name. Empty selects EscapeFull.
func ParseEscapeMode(name string) (EscapeMode, error) {
	switch EscapeMode(strings.ToLower(name)) {
	case "", EscapeFull:
		return EscapeFull, nil
	case EscapeQuotes:
		return EscapeQuotes, nil
	default:
		return "", fmt.Errorf("unknown escape mode %q (expected %q or %q)", name, EscapeFull, EscapeQuotes)
	}
}

// EscapeStringLiteral escapes s for a double-quoted C/C++ string literal.
func EscapeStringLiteral(s string, mode EscapeMode) string {
	if mode == EscapeQuotes {
		return quotesEscaper.Replace(s)
	}
	return fullEscaper.Replace(s)
}

// UnescapeStringLiteral reverses the escapes a C/C++ compiler applies to the
// body of a string literal for the sequences \\, \", \', \n, \r and \t.
// Other backslash sequences are kept as written.
func UnescapeStringLiteral(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case '\\', '"', '\'':
			b.WriteByte(s[i])
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// HeaderData holds the values substituted into the header template.
type HeaderData struct {
	Type      string // string type of the constant, e.g. "String"
	Variable  string // constant name, e.g. "HTML"
	Literal   string // already escaped string literal body
	Generator string // tool named in the generated-file notice
	Command   string // command that regenerates the file
}

// HeaderRenderer renders the header file from a text/template.
type HeaderRenderer struct {
	tmpl *template.Template
}

// NewHeaderRenderer parses the header template.
func NewHeaderRenderer(text string) (*HeaderRenderer, error) {
	tmpl, err := template.New("header").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing template: %v", ErrHeaderRender, err)
	}
	return &HeaderRenderer{tmpl: tmpl}, nil
}

// Render executes the template. Empty fields take the package defaults.
func (r *HeaderRenderer) Render(data HeaderData) (string, error) {
	if data.Type == "" {
		data.Type = DefaultHeaderType
	}
	if data.Variable == "" {
		data.Variable = DefaultHeaderVariable
	}
	if data.Generator == "" {
		data.Generator = DefaultGenerator
	}
	if data.Command == "" {
		data.Command = DefaultCommand
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHeaderRender, err)
	}
	return buf.String(), nil
}
