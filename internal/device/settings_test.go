package device

import (
	"errors"
	"testing"
)

func TestParseSetting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		arg     string
		want    Setting
		wantErr bool
	}{
		{name: "boolean true", arg: "Auto Connect=true", want: Setting{"AutoConnect", "True"}},
		{name: "boolean false any case", arg: "Dark Mode=FALSE", want: Setting{"DarkMode", "False"}},
		{name: "integer", arg: "Max Speed=120", want: Setting{"MaxSpeed", "120"}},
		{name: "negative integer", arg: "Offset=-3", want: Setting{"Offset", "-3"}},
		{name: "float", arg: "Gain=0.25", want: Setting{"Gain", "0.25"}},
		{name: "value whitespace trimmed", arg: "Gain= 2 ", want: Setting{"Gain", "2"}},
		{name: "missing equals", arg: "Gain", wantErr: true},
		{name: "empty key", arg: " =1", wantErr: true},
		{name: "text value", arg: "Name=esp32", wantErr: true},
		{name: "empty value", arg: "Gain=", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseSetting(tt.arg)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSetting) {
					t.Errorf("ParseSetting(%q) error = %v, want ErrInvalidSetting", tt.arg, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSetting(%q) unexpected error: %v", tt.arg, err)
			}
			if got != tt.want {
				t.Errorf("ParseSetting(%q) = %+v, want %+v", tt.arg, got, tt.want)
			}
		})
	}
}

func TestNewSetting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"bool", true, "True"},
		{"int", 42, "42"},
		{"uint", uint(7), "7"},
		{"float32", float32(1.5), "1.5"},
		{"float64 no exponent", 1e6, "1000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewSetting("Some Key", tt.value)
			if err != nil {
				t.Fatalf("NewSetting() error: %v", err)
			}
			if got.Key != "SomeKey" || got.Value != tt.want {
				t.Errorf("NewSetting() = %+v, want SomeKey=%s", got, tt.want)
			}
		})
	}

	if _, err := NewSetting("k", "text"); !errors.Is(err, ErrInvalidSetting) {
		t.Errorf("NewSetting(string) error = %v, want ErrInvalidSetting", err)
	}
}

func TestWireKey(t *testing.T) {
	t.Parallel()

	if got := WireKey(" Wifi  Power Save "); got != "WifiPowerSave" {
		t.Errorf("WireKey() = %q, want WifiPowerSave", got)
	}
}
