// Package fuzzy ranks candidate strings against a query by Jaro-Winkler
// similarity.
//
// It builds on package jaro for scoring and adds the pieces a search feature
// needs: text preparation (Unicode normalization, case folding, scripted
// transforms), thresholds, result ordering, caching and parallel matching.
//
// # Scoring
//
// Every candidate is scored in [0, 1] by a Scorer. The default scorer is
// Jaro-Winkler with jaro.DefaultParams; JaroScorer and TokenScorer are
// available for plain Jaro and multi-word candidates. Candidates scoring
// below the threshold are dropped. AdaptiveThreshold picks a threshold from
// the query length, demanding exact matches for very short queries.
//
// # Usage
//
//	matcher := fuzzy.NewMatcher(fuzzy.DefaultOptions())
//	items := []fuzzy.Item{
//	    {Text: "Friedrich Nietzsche"},
//	    {Text: "Jean-Paul Sartre"},
//	}
//	results, err := matcher.Match("nietzche", items, 10)
//
// For large item sets, use the AsyncMatcher:
//
//	async := fuzzy.NewAsyncMatcher(matcher, 0)
//	results, err := async.MatchParallel(ctx, query, items, 10)
//
// # Thread Safety
//
// Matcher and AsyncMatcher are safe for concurrent use. The cache is
// internally synchronized. A Transformer must be safe for concurrent use.
package fuzzy
