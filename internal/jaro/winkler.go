package jaro

import "fmt"

// UnlimitedPrefix disables the prefix cap in Params.MaxPrefix.
const UnlimitedPrefix = -1

// Params configures the Winkler prefix adjustment.
type Params struct {
	// ScalingFactor is the weight given to each common prefix element.
	ScalingFactor float64

	// MaxPrefix caps the common prefix length considered.
	// UnlimitedPrefix scans the whole common prefix.
	MaxPrefix int

	// BoostThreshold is the Jaro score a pair must exceed before the
	// prefix bonus applies. Zero boosts every non-zero score.
	BoostThreshold float64
}

// DefaultParams returns the parameters used by WinklerSimilarity:
// a 0.1 scaling factor over the full common prefix with no threshold.
// Scores are clamped to 1.
//
// The prefix is unlimited so that long shared prefixes keep counting:
// "thequickbrownfoxjumpedoverx" and "...y" score 1, where a cap of four
// would stop at 0.985. ClassicParams keeps the four-element cap.
func DefaultParams() Params {
	return Params{
		ScalingFactor:  0.1,
		MaxPrefix:      UnlimitedPrefix,
		BoostThreshold: 0,
	}
}

// ClassicParams returns the textbook Winkler parameters: a 0.1 scaling
// factor, at most four prefix elements, and a 0.7 boost threshold.
func ClassicParams() Params {
	return Params{
		ScalingFactor:  0.1,
		MaxPrefix:      4,
		BoostThreshold: 0.7,
	}
}

// Validate reports whether p keeps adjusted scores inside [0, 1].
func (p Params) Validate() error {
	switch {
	case p.ScalingFactor < 0 || p.ScalingFactor > 1:
		return fmt.Errorf("%w: scaling factor %g outside [0, 1]", ErrInvalidParams, p.ScalingFactor)
	case p.MaxPrefix < UnlimitedPrefix:
		return fmt.Errorf("%w: max prefix %d", ErrInvalidParams, p.MaxPrefix)
	case p.BoostThreshold < 0 || p.BoostThreshold >= 1:
		return fmt.Errorf("%w: boost threshold %g outside [0, 1)", ErrInvalidParams, p.BoostThreshold)
	case p.MaxPrefix != UnlimitedPrefix && p.ScalingFactor*float64(p.MaxPrefix) > 1:
		return fmt.Errorf("%w: scaling factor %g * max prefix %d exceeds 1",
			ErrInvalidParams, p.ScalingFactor, p.MaxPrefix)
	}
	return nil
}

// Winkler applies the prefix adjustment to a Jaro score previously computed
// for a and b. The result is never lower than jaroScore and never above 1.
func Winkler[E comparable](a, b []E, jaroScore float64, p Params) float64 {
	if jaroScore <= p.BoostThreshold {
		return jaroScore
	}

	l := CommonPrefix(a, b, p.MaxPrefix)
	if l == 0 {
		return jaroScore
	}

	score := jaroScore + float64(l)*p.ScalingFactor*(1-jaroScore)
	return min(score, 1)
}

// CommonPrefix returns the length of the common prefix of a and b, capped
// at limit. A negative limit means no cap.
func CommonPrefix[E comparable](a, b []E, limit int) int {
	n := min(len(a), len(b))
	if limit >= 0 {
		n = min(n, limit)
	}

	l := 0
	for l < n && a[l] == b[l] {
		l++
	}
	return l
}

// WinklerSimilarity returns the Jaro-Winkler similarity of a and b using
// DefaultParams.
func WinklerSimilarity[E comparable](a, b []E) float64 {
	return WinklerSimilarityWith(a, b, DefaultParams())
}

// WinklerSimilarityWith returns the Jaro-Winkler similarity of a and b using p.
func WinklerSimilarityWith[E comparable](a, b []E, p Params) float64 {
	return Winkler(a, b, Similarity(a, b), p)
}

// Compare returns the Jaro similarity of a and b, or the Jaro-Winkler
// similarity with DefaultParams when winkler is set.
func Compare[E comparable](a, b []E, winkler bool) float64 {
	score := Similarity(a, b)
	if winkler {
		score = Winkler(a, b, score, DefaultParams())
	}
	return score
}
