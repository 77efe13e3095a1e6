package fuzzy

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dshills/jaro/internal/jaro"
)

// Metric selects the similarity metric used for scoring.
type Metric int

const (
	// MetricWinkler scores with Jaro-Winkler.
	MetricWinkler Metric = iota
	// MetricJaro scores with plain Jaro.
	MetricJaro
)

// String returns the metric name.
func (m Metric) String() string {
	switch m {
	case MetricJaro:
		return "jaro"
	case MetricWinkler:
		return "winkler"
	default:
		return "unknown"
	}
}

// ParseMetric parses a metric name. The empty string selects MetricWinkler.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "winkler", "jaro-winkler", "jarowinkler", "jw":
		return MetricWinkler, nil
	case "jaro":
		return MetricJaro, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
}

// Scorer calculates the similarity of a prepared query and candidate.
type Scorer interface {
	// Score returns a similarity in [0, 1]; higher is better.
	Score(query, text []rune) float64
}

// JaroScorer scores with the Jaro metric.
type JaroScorer struct{}

// Score implements the Scorer interface.
func (JaroScorer) Score(query, text []rune) float64 {
	return jaro.Similarity(query, text)
}

// WinklerScorer scores with the Jaro-Winkler metric.
type WinklerScorer struct {
	Params jaro.Params
}

// NewWinklerScorer returns a WinklerScorer using jaro.DefaultParams.
func NewWinklerScorer() WinklerScorer {
	return WinklerScorer{Params: jaro.DefaultParams()}
}

// Score implements the Scorer interface.
func (s WinklerScorer) Score(query, text []rune) float64 {
	return jaro.WinklerSimilarityWith(query, text, s.Params)
}

// NewScorer returns the scorer for metric m.
func NewScorer(m Metric, p jaro.Params) Scorer {
	if m == MetricJaro {
		return JaroScorer{}
	}
	return WinklerScorer{Params: p}
}

// TokenScorer scores multi-word text token by token.
// Each query token takes its best score against any text token; the result
// is the mean over query tokens. Inputs without separators fall back to Base.
type TokenScorer struct {
	Base Scorer
}

// Score implements the Scorer interface.
func (s TokenScorer) Score(query, text []rune) float64 {
	base := s.Base
	if base == nil {
		base = NewWinklerScorer()
	}

	qTokens := tokenize(query)
	tTokens := tokenize(text)
	if len(qTokens) == 0 || len(tTokens) == 0 || (len(qTokens) == 1 && len(tTokens) == 1) {
		return base.Score(query, text)
	}

	total := 0.0
	for _, q := range qTokens {
		best := 0.0
		for _, t := range tTokens {
			if score := base.Score(q, t); score > best {
				best = score
			}
		}
		total += best
	}
	return total / float64(len(qTokens))
}

// tokenize splits runes at separator characters.
func tokenize(runes []rune) [][]rune {
	var tokens [][]rune
	start := -1
	for i, r := range runes {
		if isSeparator(r) {
			if start >= 0 {
				tokens = append(tokens, runes[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, runes[start:])
	}
	return tokens
}

// isSeparator reports whether r separates words (Unicode space or punctuation).
func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}
