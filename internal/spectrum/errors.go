package spectrum

import (
	"errors"
	"fmt"
)

var (
	// ErrBandNotFound is returned when a frequency has no exact match in the band layout
	ErrBandNotFound = errors.New("band not found")

	// ErrInvalidAmplitude is returned when an amplitude value cannot be used
	ErrInvalidAmplitude = errors.New("invalid amplitude")
)

// ConfigError is a custom error type for configuration errors
type ConfigError struct {
	Field string
	msg   string
}

func newConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.msg
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.msg)
}
