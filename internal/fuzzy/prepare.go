package fuzzy

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Transformer rewrites text before it is scored. Implementations must be
// safe for concurrent use.
type Transformer interface {
	Transform(s string) (string, error)
}

// TransformFunc adapts a plain function to the Transformer interface.
type TransformFunc func(s string) (string, error)

// Transform implements Transformer.
func (f TransformFunc) Transform(s string) (string, error) {
	return f(s)
}

// prepare converts text into the rune form that gets scored.
func (m *Matcher) prepare(s string) ([]rune, error) {
	if m.options.Transformer != nil {
		out, err := m.options.Transformer.Transform(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransform, err)
		}
		s = out
	}

	if m.options.Normalize {
		s = norm.NFC.String(s)
	}

	// A Caser is stateful and must not be shared between goroutines.
	if !m.options.CaseSensitive {
		s = cases.Fold().String(s)
	}

	return []rune(s), nil
}
