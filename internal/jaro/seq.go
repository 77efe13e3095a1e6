package jaro

import (
	"fmt"
	"iter"
)

// Collect drains seq into a slice, failing with ErrUnbounded as soon as it
// yields more than limit elements. limit must be positive.
func Collect[E any](seq iter.Seq[E], limit int) ([]E, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit %d", ErrUnbounded, limit)
	}

	var out []E
	for e := range seq {
		if len(out) == limit {
			return nil, fmt.Errorf("%w: more than %d elements", ErrUnbounded, limit)
		}
		out = append(out, e)
	}
	return out, nil
}

// SimilaritySeq collects both sequences under limit and returns their Jaro
// similarity.
func SimilaritySeq[E comparable](a, b iter.Seq[E], limit int) (float64, error) {
	sa, sb, err := collectPair(a, b, limit)
	if err != nil {
		return 0, err
	}
	return Similarity(sa, sb), nil
}

// WinklerSimilaritySeq collects both sequences under limit and returns their
// Jaro-Winkler similarity using p.
func WinklerSimilaritySeq[E comparable](a, b iter.Seq[E], limit int, p Params) (float64, error) {
	sa, sb, err := collectPair(a, b, limit)
	if err != nil {
		return 0, err
	}
	return WinklerSimilarityWith(sa, sb, p), nil
}

func collectPair[E comparable](a, b iter.Seq[E], limit int) ([]E, []E, error) {
	sa, err := Collect(a, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("first sequence: %w", err)
	}
	sb, err := Collect(b, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("second sequence: %w", err)
	}
	return sa, sb, nil
}
