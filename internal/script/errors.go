package script

import "errors"

var (
	// ErrScriptNotFound is returned when a script does not define normalize.
	ErrScriptNotFound = errors.New("script: normalize function not defined")

	// ErrClosed is returned when calling a closed script.
	ErrClosed = errors.New("script: closed")

	// ErrBadResult is returned when normalize does not return a string.
	ErrBadResult = errors.New("script: normalize must return a string")
)
