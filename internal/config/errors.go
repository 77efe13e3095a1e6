package config

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates an explicitly requested configuration file doesn't exist.
var ErrFileNotFound = errors.New("config file not found")

// ValidationError describes a validation failure for a setting.
type ValidationError struct {
	// Path is the setting path that failed validation, e.g. "matcher.limit".
	Path string
	// Message describes the validation error.
	Message string
	// Value is the invalid value.
	Value any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}
