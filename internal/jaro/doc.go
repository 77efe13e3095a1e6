// Package jaro implements the Jaro and Jaro-Winkler similarity metrics.
//
// Both metrics compare two ordered sequences and return a score in [0, 1],
// where 1 means the sequences are identical and 0 means no useful alignment
// was found. The algorithms are generic over any comparable element type;
// strings are compared code point by code point.
//
// # Jaro
//
// Elements of the first sequence are matched against unmatched, equal
// elements of the second sequence that lie within a window of
// max(len(a), len(b))/2 - 1 positions. With c matches and t transpositions
// (half the number of out-of-order matched pairs) the score is
//
//	(c/len(a) + c/len(b) + (c-t)/c) / 3
//
// Two empty sequences are identical (1); an empty and a non-empty sequence
// share nothing (0).
//
// # Jaro-Winkler
//
// The Winkler adjustment rewards a common prefix of length L:
//
//	jaro + L * scaling * (1 - jaro)
//
// DefaultParams scans the whole common prefix, applies the bonus to every
// score and clamps the result to 1. ClassicParams caps the prefix at four
// elements and only boosts scores above 0.7.
//
// # Usage
//
//	jaro.String("martha", "marhta")        // 0.944
//	jaro.WinklerString("martha", "marhta") // 0.961
//	jaro.Similarity([]int{1, 2}, []int{3, 4})
//
// # Thread Safety
//
// Every function is pure. All working state is allocated per call, so the
// package is safe for concurrent use. Cost is O(len(a) * window); callers
// comparing untrusted input should bound its length (see Collect).
package jaro
