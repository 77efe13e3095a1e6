package jaro

// Similarity returns the Jaro similarity of a and b.
//
// The result is 1 for identical sequences (including two empty ones) and 0
// when nothing matches. Similarity is symmetric in its arguments.
func Similarity[E comparable](a, b []E) float64 {
	m, n := len(a), len(b)

	switch {
	case m == 0 && n == 0:
		return 1
	case m == 0 || n == 0:
		return 0
	case m == 1 && n == 1:
		if a[0] == b[0] {
			return 1
		}
		return 0
	}

	c, t := matchCounts(a, b)
	if c == 0 {
		return 0
	}

	fc := float64(c)
	return (fc/float64(m) + fc/float64(n) + float64(c-t)/fc) / 3
}

// matchCounts returns the number of matched elements and the number of
// transpositions between a and b. Both must be non-empty.
func matchCounts[E comparable](a, b []E) (matches, transpositions int) {
	m, n := len(a), len(b)
	window := matchWindow(m, n)

	// One buffer holds the match flags for both sides: [0,m) for a, [m,m+n) for b.
	flags := make([]bool, m+n)
	matchedA, matchedB := flags[:m], flags[m:]

	for i := range a {
		lo := max(0, i-window)
		hi := min(n-1, i+window)
		for j := lo; j <= hi; j++ {
			if matchedB[j] || a[i] != b[j] {
				continue
			}
			matchedA[i] = true
			matchedB[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0, 0
	}

	// Walk both matched subsequences in order and count disagreements.
	disagreements := 0
	k := 0
	for i := range a {
		if !matchedA[i] {
			continue
		}
		for !matchedB[k] {
			k++
		}
		if a[i] != b[k] {
			disagreements++
		}
		k++
	}

	return matches, disagreements / 2
}

// matchWindow returns the search radius used when matching elements.
func matchWindow(m, n int) int {
	return max(0, max(m, n)/2-1)
}
