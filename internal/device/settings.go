package device

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for settings updates.
var (
	// ErrNetwork indicates the request never produced a response.
	ErrNetwork = errors.New("settings request failed")

	// ErrSettingRejected indicates the device answered with a non-2xx status.
	ErrSettingRejected = errors.New("setting rejected by device")

	// ErrInvalidSetting indicates a malformed key=value argument.
	ErrInvalidSetting = errors.New("invalid setting")
)

// Boolean values on the wire.
const (
	ValueTrue  = "True"
	ValueFalse = "False"
)

// Setting is one change sent to the device.
type Setting struct {
	Key   string // wire key, spaces removed
	Value string // wire value
}

func (s Setting) String() string {
	return s.Key + "=" + s.Value
}

// NewSetting builds a Setting from a display name and a bool, integer or
// float value.
func NewSetting(name string, value any) (Setting, error) {
	key := WireKey(name)
	if key == "" {
		return Setting{}, fmt.Errorf("%w: empty key", ErrInvalidSetting)
	}

	var wire string
	switch v := value.(type) {
	case bool:
		wire = FormatBool(v)
	case int:
		wire = strconv.Itoa(v)
	case int64:
		wire = strconv.FormatInt(v, 10)
	case uint:
		wire = strconv.FormatUint(uint64(v), 10)
	case uint64:
		wire = strconv.FormatUint(v, 10)
	case float32:
		wire = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		wire = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return Setting{}, fmt.Errorf("%w: %s: unsupported value type %T", ErrInvalidSetting, name, value)
	}
	return Setting{Key: key, Value: wire}, nil
}

// ParseSetting parses a "name=value" argument. The value is read as a
// boolean (true/false, any case) or a decimal number.
func ParseSetting(arg string) (Setting, error) {
	name, raw, ok := strings.Cut(arg, "=")
	if !ok {
		return Setting{}, fmt.Errorf("%w: %q: expected name=value", ErrInvalidSetting, arg)
	}
	raw = strings.TrimSpace(raw)

	switch strings.ToLower(raw) {
	case "true":
		return NewSetting(name, true)
	case "false":
		return NewSetting(name, false)
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return NewSetting(name, n)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return NewSetting(name, f)
	}
	return Setting{}, fmt.Errorf("%w: %q: value must be a boolean or a number", ErrInvalidSetting, arg)
}

// WireKey removes every space from a setting name.
func WireKey(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "")
}

// FormatBool returns the wire form of a boolean.
func FormatBool(b bool) string {
	if b {
		return ValueTrue
	}
	return ValueFalse
}
