package fuzzy

import "errors"

var (
	// ErrUnknownMetric is returned by ParseMetric for unrecognized names.
	ErrUnknownMetric = errors.New("fuzzy: unknown metric")

	// ErrTransform wraps failures of an Options.Transformer.
	ErrTransform = errors.New("fuzzy: transform failed")
)
