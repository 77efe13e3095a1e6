package fuzzy

import (
	"container/heap"
	"context"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AsyncMatcher provides parallel matching for large item sets.
// It splits the items across a fixed number of workers.
type AsyncMatcher struct {
	matcher    *Matcher
	numWorkers int
}

// NewAsyncMatcher creates an async matcher with the given base matcher.
// If numWorkers is 0, it defaults to runtime.NumCPU().
// Panics if matcher is nil.
func NewAsyncMatcher(matcher *Matcher, numWorkers int) *AsyncMatcher {
	if matcher == nil {
		panic("fuzzy: NewAsyncMatcher called with nil matcher")
	}
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &AsyncMatcher{
		matcher:    matcher,
		numWorkers: numWorkers,
	}
}

// Workers returns the number of workers used per match.
func (m *AsyncMatcher) Workers() int {
	return m.numWorkers
}

// MatchAsync performs matching in the background and streams results in
// score order (highest first).
//
// IMPORTANT: The caller MUST either drain the results channel or call the
// returned cancel function. Failure to do either leaks a goroutine.
func (m *AsyncMatcher) MatchAsync(ctx context.Context, query string, items []Item, limit int) (<-chan Result, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	results := make(chan Result, 100)

	go func() {
		defer close(results)

		collected, err := m.MatchParallel(ctx, query, items, limit)
		if err != nil {
			if ctx.Err() == nil {
				m.matcher.logger.Warn("async match failed", zap.String("query", query), zap.Error(err))
			}
			return
		}

		for _, r := range collected {
			select {
			case results <- r:
			case <-ctx.Done():
				return
			}
		}
	}()

	return results, cancel
}

// MatchParallel performs parallel matching and returns all results sorted
// like Matcher.Match. Each worker keeps a top-k heap when limit > 0.
// It returns ctx.Err() if the context is canceled first.
func (m *AsyncMatcher) MatchParallel(ctx context.Context, query string, items []Item, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return m.matcher.emptyQueryResults(items, limit), nil
	}

	queryRunes, err := m.matcher.prepare(query)
	if err != nil {
		return nil, err
	}

	threshold := m.matcher.threshold(len(queryRunes))
	scorer := m.matcher.currentScorer()

	chunkSize := m.chunkSize(len(items))
	chunks := make([][]Result, (len(items)+chunkSize-1)/chunkSize)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.numWorkers)

	for i := 0; i < len(items); i += chunkSize {
		end := min(i+chunkSize, len(items))
		slot := i / chunkSize
		chunk := items[i:end]

		g.Go(func() error {
			var out []Result
			var err error
			if limit > 0 {
				out, err = m.matchChunkTopK(gctx, scorer, queryRunes, threshold, chunk, limit)
			} else {
				out, err = m.matchChunkAll(gctx, scorer, queryRunes, threshold, chunk)
			}
			chunks[slot] = out
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []Result
	for _, c := range chunks {
		all = append(all, c...)
	}

	sortResults(all)
	return applyLimit(all, limit), nil
}

// chunkSize spreads n items over the workers with a minimum chunk size.
func (m *AsyncMatcher) chunkSize(n int) int {
	size := (n + m.numWorkers - 1) / m.numWorkers
	minSize := 50
	if n < 1000 {
		minSize = 10
	}
	return max(size, minSize)
}

// matchChunkTopK matches items in a chunk and keeps only the best k.
func (m *AsyncMatcher) matchChunkTopK(ctx context.Context, scorer Scorer, queryRunes []rune, threshold float64, chunk []Item, k int) ([]Result, error) {
	h := &resultHeap{}
	heap.Init(h)

	for _, item := range chunk {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r, ok := m.matcher.matchItem(scorer, queryRunes, threshold, item)
		if !ok {
			continue
		}
		if h.Len() < k {
			heap.Push(h, r)
		} else if worse((*h)[0], r) {
			(*h)[0] = r
			heap.Fix(h, 0)
		}
	}

	return h.toSlice(), nil
}

// matchChunkAll matches all items in a chunk (no limit).
func (m *AsyncMatcher) matchChunkAll(ctx context.Context, scorer Scorer, queryRunes []rune, threshold float64, chunk []Item) ([]Result, error) {
	results := make([]Result, 0, len(chunk)/4)

	for _, item := range chunk {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r, ok := m.matcher.matchItem(scorer, queryRunes, threshold, item); ok {
			results = append(results, r)
		}
	}

	return results, nil
}

// worse reports whether a ranks below b in the final ordering.
func worse(a, b Result) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Item.Text > b.Item.Text
}

// resultHeap is a min-heap of Results by rank (for top-k selection).
type resultHeap []Result

func (h resultHeap) Len() int           { return len(h) }
func (h resultHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h resultHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *resultHeap) Push(x any) {
	*h = append(*h, x.(Result)) //nolint:errcheck // heap.Interface requires any; we only push Result
}

func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

func (h *resultHeap) toSlice() []Result {
	result := make([]Result, len(*h))
	copy(result, *h)
	return result
}
