package webembed

import (
	"errors"
	"testing"
	"time"
)

func TestInput_WithDefaults(t *testing.T) {
	t.Parallel()

	got := Input{Entry: "  ", Header: "fw/page.h"}.withDefaults()

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"Entry", got.Entry, DefaultEntry},
		{"Shell", got.Shell, DefaultShell},
		{"ModuleRef", got.ModuleRef, DefaultModuleRef},
		{"Marker", got.Marker, DefaultMarker},
		{"DebugHTML", got.DebugHTML, DefaultDebugHTML},
		{"Header", got.Header, "fw/page.h"},
		{"Type", got.Type, "String"},
		{"Variable", got.Variable, "HTML"},
		{"Escape", string(got.Escape), string(EscapeFull)},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
}

func TestInput_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      Input
		wantErr bool
	}{
		{"defaults", Input{}, false},
		{"quotes mode", Input{Escape: EscapeQuotes}, false},
		{"custom comment marker", Input{Marker: "<!-- js -->"}, false},
		{"marker not a comment", Input{Marker: "INJECT"}, true},
		{"unknown escape", Input{Escape: "none"}, true},
		{"outputs collide", Input{DebugHTML: "out.h", Header: "out.h"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.in.withDefaults().validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("validate() error = %v, want ErrInvalidInput", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validate() unexpected error: %v", err)
			}
		})
	}
}

func TestResult_Duration(t *testing.T) {
	t.Parallel()

	r := &Result{Stages: []StageTiming{
		{Stage: StageBundle, Duration: 30 * time.Millisecond},
		{Stage: StageWrite, Duration: 5 * time.Millisecond},
	}}
	if got := r.Duration(); got != 35*time.Millisecond {
		t.Errorf("Duration() = %v, want 35ms", got)
	}
	if got := (&Result{}).Duration(); got != 0 {
		t.Errorf("empty Duration() = %v, want 0", got)
	}
}
