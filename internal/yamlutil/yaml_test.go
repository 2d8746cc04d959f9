package yamlutil_test

// Notes:
// - Marshal's error branch is not tested: goccy/go-yaml only fails on
//   channels or functions, which no caller passes.

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-webembed/internal/yamlutil"
)

type project struct {
	Entry  string `yaml:"entry"`
	Output struct {
		Header string `yaml:"header"`
	} `yaml:"output"`
	Concurrency int `yaml:"concurrency"`
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr error
		check   func(t *testing.T, p *project)
	}{
		{
			name: "known fields",
			data: "entry: src/main.js\noutput:\n  header: client.h\nconcurrency: 3\n",
			check: func(t *testing.T, p *project) {
				if p.Entry != "src/main.js" || p.Output.Header != "client.h" || p.Concurrency != 3 {
					t.Errorf("decoded %+v", p)
				}
			},
		},
		{
			name: "absent fields keep prior values",
			data: "concurrency: 8\n",
			check: func(t *testing.T, p *project) {
				if p.Entry != "preset.js" {
					t.Errorf("Entry = %q, want preset kept", p.Entry)
				}
			},
		},
		{
			name:    "unknown top-level field",
			data:    "entry: a.js\nextra: 1\n",
			wantErr: errors.New("unknown field"),
		},
		{
			name:    "unknown nested field",
			data:    "output:\n  footer: x\n",
			wantErr: errors.New("unknown field"),
		},
		{
			name:    "type mismatch",
			data:    "concurrency: many\n",
			wantErr: errors.New("cannot unmarshal"),
		},
		{
			name:    "empty data",
			data:    "",
			wantErr: yamlutil.ErrNilData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &project{Entry: "preset.js"}
			err := yamlutil.UnmarshalStrict([]byte(tt.data), p)

			if tt.wantErr != nil {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, tt.wantErr) && !strings.Contains(err.Error(), tt.wantErr.Error()) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, p)
		})
	}
}

func TestUnmarshalStrict_Limits(t *testing.T) {
	t.Parallel()

	big := []byte("entry: " + strings.Repeat("a", yamlutil.MaxInputSize))
	if err := yamlutil.UnmarshalStrict(big, &project{}); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("oversized input error = %v, want ErrInputTooLarge", err)
	}
	if err := yamlutil.UnmarshalStrict([]byte("entry: a"), nil); !errors.Is(err, yamlutil.ErrNilDestination) {
		t.Errorf("nil destination error = %v, want ErrNilDestination", err)
	}
}

// ---------------------------------------------------------------------------
// TestMarshal
// ---------------------------------------------------------------------------

func TestMarshal(t *testing.T) {
	t.Parallel()

	p := project{Entry: "src/main.js", Concurrency: 2}
	p.Output.Header = "../Arduino/client.h"

	out, err := yamlutil.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	for _, want := range []string{"entry: src/main.js", "header: ../Arduino/client.h", "concurrency: 2"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
