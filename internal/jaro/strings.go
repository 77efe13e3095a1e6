package jaro

// String returns the Jaro similarity of a and b compared by code point.
func String(a, b string) float64 {
	return Similarity([]rune(a), []rune(b))
}

// WinklerString returns the Jaro-Winkler similarity of a and b compared by
// code point, using DefaultParams.
func WinklerString(a, b string) float64 {
	return WinklerSimilarity([]rune(a), []rune(b))
}

// WinklerStringWith returns the Jaro-Winkler similarity of a and b compared
// by code point, using p.
func WinklerStringWith(a, b string, p Params) float64 {
	return WinklerSimilarityWith([]rune(a), []rune(b), p)
}

// CompareStrings is the string form of Compare.
func CompareStrings(a, b string, winkler bool) float64 {
	return Compare([]rune(a), []rune(b), winkler)
}
