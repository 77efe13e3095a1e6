package fuzzy

// SelectOpt enables fine-tuning of Select.
type SelectOpt func(*selectOpts)

type selectOpts struct {
	threshold     float64
	limit         int
	caseSensitive bool
	metric        Metric
}

// WithThreshold discards choices scoring below threshold.
// AdaptiveThreshold derives the threshold from the target length.
func WithThreshold(threshold float64) SelectOpt {
	return func(o *selectOpts) {
		o.threshold = threshold
	}
}

// WithLimit limits the number of returned choices. A limit <= 0 is unlimited.
func WithLimit(limit int) SelectOpt {
	return func(o *selectOpts) {
		o.limit = limit
	}
}

// WithCaseSensitivity enables or disables case-sensitive matching.
func WithCaseSensitivity(enabled bool) SelectOpt {
	return func(o *selectOpts) {
		o.caseSensitive = enabled
	}
}

// WithMetric selects the similarity metric.
func WithMetric(m Metric) SelectOpt {
	return func(o *selectOpts) {
		o.metric = m
	}
}

// Select returns the choices most similar to target, best first.
//
// By default choices below an adaptive threshold are discarded, the number
// of results is unlimited, and matching is case-insensitive with
// Jaro-Winkler scoring.
func Select(choices []string, target string, setters ...SelectOpt) []string {
	o := selectOpts{threshold: AdaptiveThreshold, metric: MetricWinkler}
	for _, set := range setters {
		set(&o)
	}

	opts := DefaultOptions()
	opts.Metric = o.metric
	opts.Threshold = o.threshold
	opts.CaseSensitive = o.caseSensitive
	opts.CacheSize = 0

	items := make([]Item, len(choices))
	for i, c := range choices {
		items[i] = Item{Text: c}
	}

	// Without a Transformer preparation cannot fail.
	results, _ := NewMatcher(opts).Match(target, items, o.limit)

	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Item.Text
	}
	return out
}
