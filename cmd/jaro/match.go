package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/jaro/internal/catalog"
	"github.com/dshills/jaro/internal/fuzzy"
	"github.com/dshills/jaro/internal/script"
)

var errNoCandidates = errors.New("no candidates to match against")

func newMatchCmd(a *app) *cobra.Command {
	var (
		candidates    string
		scriptPath    string
		metric        string
		limit         int
		threshold     float64
		caseSensitive bool
		tokenize      bool
		parallel      bool
	)

	cmd := &cobra.Command{
		Use:   "match QUERY",
		Short: "Rank candidates by similarity to a query",
		Long: `Rank candidates by similarity to QUERY and print "score<TAB>text" lines,
best first.

Candidates come from --candidates (a text file with one per line, or a YAML
list) or, without it, from standard input.`,
		Example: `  jaro match martha --candidates names.txt --limit 3
  ls | jaro match main.go --threshold 0.8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mc := &a.cfg.Matcher
			flags := cmd.Flags()
			if flags.Changed("metric") {
				mc.Metric = metric
			}
			if flags.Changed("limit") {
				mc.Limit = limit
			}
			if flags.Changed("threshold") {
				mc.Threshold = threshold
			}
			if flags.Changed("case-sensitive") {
				mc.CaseSensitive = caseSensitive
			}
			if flags.Changed("tokenize") {
				mc.Tokenize = tokenize
			}
			if flags.Changed("script") {
				mc.Script = scriptPath
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			items, err := a.readCandidates(candidates)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return errNoCandidates
			}

			opts, err := mc.Options()
			if err != nil {
				return err
			}
			opts.Logger = a.logger
			opts.CacheSize = 0

			if mc.Script != "" {
				s, err := script.Load(mc.Script)
				if err != nil {
					return err
				}
				defer s.Close()
				opts.Transformer = s
			}

			matcher := fuzzy.NewMatcher(opts)

			var results []fuzzy.Result
			if parallel {
				async := fuzzy.NewAsyncMatcher(matcher, mc.Workers)
				results, err = async.MatchParallel(cmd.Context(), args[0], items, mc.Limit)
			} else {
				results, err = matcher.Match(args[0], items, mc.Limit)
			}
			if err != nil {
				return err
			}

			a.logger.Debug("matched",
				zap.String("query", args[0]),
				zap.Int("candidates", len(items)),
				zap.Int("results", len(results)))

			for _, r := range results {
				if _, err := fmt.Fprintf(a.stdout, "%.6f\t%s\n", r.Score, r.Item.Text); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&candidates, "candidates", "f", "", "candidate file (default: standard input)")
	flags.StringVarP(&metric, "metric", "m", "winkler", "similarity metric (jaro, winkler)")
	flags.IntVarP(&limit, "limit", "n", 10, "maximum results (0 for all)")
	flags.Float64VarP(&threshold, "threshold", "t", -1, "minimum score, or -1 to adapt to query length")
	flags.BoolVar(&caseSensitive, "case-sensitive", false, "do not fold case before scoring")
	flags.BoolVar(&tokenize, "tokenize", false, "score multi-word text word by word")
	flags.StringVar(&scriptPath, "script", "", "Lua normaliser applied before scoring")
	flags.BoolVar(&parallel, "parallel", false, "spread scoring across CPUs")
	return cmd
}

func (a *app) readCandidates(path string) ([]fuzzy.Item, error) {
	if path == "" {
		return catalog.ParseText(a.stdin)
	}
	c, err := catalog.Open(path, catalog.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	return c.Items(), nil
}
