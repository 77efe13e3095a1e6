package jaro

import "errors"

var (
	// ErrInvalidParams is returned when Winkler parameters could push a
	// score outside [0, 1].
	ErrInvalidParams = errors.New("jaro: invalid winkler parameters")

	// ErrUnbounded is returned when a sequence does not end within the
	// allowed length.
	ErrUnbounded = errors.New("jaro: sequence must be finite and bounded")
)
