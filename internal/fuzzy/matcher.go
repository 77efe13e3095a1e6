package fuzzy

import (
	"hash/maphash"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/jaro/internal/jaro"
)

// AdaptiveThreshold selects a threshold from the query length.
const AdaptiveThreshold float64 = -1

// Item represents a searchable item.
type Item struct {
	// Text is the string to match against.
	Text string

	// Data is arbitrary data associated with this item.
	Data any
}

// Result represents a match result with scoring information.
type Result struct {
	// Item is the matched item.
	Item Item

	// Score is the similarity in [0, 1] (higher is better).
	Score float64

	// Prefix is the length in runes of the prepared common prefix.
	Prefix int
}

// Options configures the matcher behavior.
type Options struct {
	// Metric selects the scorer when Scorer is nil.
	Metric Metric

	// Params configures the Winkler adjustment for MetricWinkler.
	Params jaro.Params

	// Scorer overrides the scorer derived from Metric and Params.
	Scorer Scorer

	// Threshold is the minimum score for a result to be included.
	// AdaptiveThreshold derives it from the query length.
	Threshold float64

	// CaseSensitive disables Unicode case folding.
	CaseSensitive bool

	// Normalize applies NFC normalization before scoring.
	Normalize bool

	// CacheSize is the maximum number of cached query results.
	// Set to 0 to disable caching.
	CacheSize int

	// Transformer rewrites query and item text before scoring.
	Transformer Transformer

	// Logger receives diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Metric:        MetricWinkler,
		Params:        jaro.DefaultParams(),
		Threshold:     AdaptiveThreshold,
		CaseSensitive: false,
		Normalize:     true,
		CacheSize:     1000,
	}
}

// Matcher ranks items by similarity to a query.
type Matcher struct {
	mu      sync.RWMutex
	cache   *Cache
	scorer  Scorer
	options Options
	logger  *zap.Logger
	seed    maphash.Seed
}

// NewMatcher creates a new matcher with the given options.
func NewMatcher(opts Options) *Matcher {
	var cache *Cache
	if opts.CacheSize > 0 {
		cache = NewCache(opts.CacheSize)
	}

	scorer := opts.Scorer
	if scorer == nil {
		scorer = NewScorer(opts.Metric, opts.Params)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Matcher{
		cache:   cache,
		scorer:  scorer,
		options: opts,
		logger:  logger.Named("fuzzy"),
		seed:    maphash.MakeSeed(),
	}
}

// SetScorer sets a custom scoring algorithm and drops cached results.
func (m *Matcher) SetScorer(scorer Scorer) {
	m.mu.Lock()
	m.scorer = scorer
	m.mu.Unlock()
	m.ClearCache()
}

// Options returns the matcher configuration.
func (m *Matcher) Options() Options {
	return m.options
}

// Match finds items similar to the query and returns results sorted by
// score, highest first. Ties are ordered by item text.
func (m *Matcher) Match(query string, items []Item, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)

	// Empty query returns first items with zero score
	if query == "" {
		return m.emptyQueryResults(items, limit), nil
	}

	queryRunes, err := m.prepare(query)
	if err != nil {
		return nil, err
	}

	key := m.cacheKey(queryRunes, items)
	if m.cache != nil {
		if hits, ok := m.cache.get(key); ok {
			return resultsFor(hits, items, limit), nil
		}
	}

	threshold := m.threshold(len(queryRunes))
	scorer := m.currentScorer()

	hits := make([]hit, 0, len(items))
	for i, item := range items {
		if score, prefix, ok := m.scoreItem(scorer, queryRunes, threshold, item); ok {
			hits = append(hits, hit{index: i, score: score, prefix: prefix})
		}
	}

	sortHits(hits, items)

	if m.cache != nil {
		m.cache.set(key, hits)
	}

	return resultsFor(hits, items, limit), nil
}

// Score returns the similarity of a single query and text after preparation.
func (m *Matcher) Score(query, text string) (float64, error) {
	q, err := m.prepare(strings.TrimSpace(query))
	if err != nil {
		return 0, err
	}
	t, err := m.prepare(text)
	if err != nil {
		return 0, err
	}
	return m.currentScorer().Score(q, t), nil
}

// scoreItem scores a single item against the prepared query.
// Items whose text cannot be prepared are skipped.
func (m *Matcher) scoreItem(scorer Scorer, queryRunes []rune, threshold float64, item Item) (float64, int, bool) {
	textRunes, err := m.prepare(item.Text)
	if err != nil {
		m.logger.Warn("skipping item", zap.String("text", item.Text), zap.Error(err))
		return 0, 0, false
	}

	score := scorer.Score(queryRunes, textRunes)
	if score <= 0 || score < threshold {
		return 0, 0, false
	}
	return score, jaro.CommonPrefix(queryRunes, textRunes, jaro.UnlimitedPrefix), true
}

// matchItem is scoreItem returning a Result.
func (m *Matcher) matchItem(scorer Scorer, queryRunes []rune, threshold float64, item Item) (Result, bool) {
	score, prefix, ok := m.scoreItem(scorer, queryRunes, threshold, item)
	if !ok {
		return Result{}, false
	}
	return Result{Item: item, Score: score, Prefix: prefix}, true
}

func (m *Matcher) currentScorer() Scorer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scorer
}

// threshold returns the effective threshold for a query of n runes.
func (m *Matcher) threshold(n int) float64 {
	if m.options.Threshold == AdaptiveThreshold {
		return computeAdaptiveThreshold(n)
	}
	return m.options.Threshold
}

// computeAdaptiveThreshold demands closer matches from shorter queries.
func computeAdaptiveThreshold(n int) float64 {
	switch {
	case n <= 3:
		return 1
	case n <= 6:
		return 0.8
	case n <= 12:
		return 0.7
	default:
		return 0.6
	}
}

// cacheKey identifies a prepared query over a particular item set.
func (m *Matcher) cacheKey(queryRunes []rune, items []Item) string {
	var h maphash.Hash
	h.SetSeed(m.seed)
	for _, item := range items {
		_, _ = h.WriteString(item.Text)
		_ = h.WriteByte(0)
	}
	return string(queryRunes) + "\x00" + strconv.FormatUint(h.Sum64(), 16) + ":" + strconv.Itoa(len(items))
}

// emptyQueryResults returns results for an empty query.
func (m *Matcher) emptyQueryResults(items []Item, limit int) []Result {
	count := len(items)
	if limit > 0 && limit < count {
		count = limit
	}

	results := make([]Result, count)
	for i := 0; i < count; i++ {
		results[i] = Result{Item: items[i]}
	}
	return results
}

// ClearCache clears the result cache.
func (m *Matcher) ClearCache() {
	if m.cache != nil {
		m.cache.Clear()
	}
}

// sortResults orders by score descending, then by text for determinism.
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Item.Text < results[j].Item.Text
	})
}

// sortHits orders hits like sortResults, reading tie-break text from items.
func sortHits(hits []hit, items []Item) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return items[hits[i].index].Text < items[hits[j].index].Text
	})
}

// resultsFor builds at most limit results from hits, taking each Item from
// items so callers always see their current data.
func resultsFor(hits []hit, items []Item, limit int) []Result {
	if limit > 0 && limit < len(hits) {
		hits = hits[:limit]
	}
	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{Item: items[h.index], Score: h.score, Prefix: h.prefix}
	}
	return results
}

// applyLimit returns at most limit results.
func applyLimit(results []Result, limit int) []Result {
	if limit <= 0 || limit >= len(results) {
		return results
	}
	return results[:limit]
}
