package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/jaro/internal/fuzzy"
	"github.com/dshills/jaro/internal/jaro"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		metric  string
		classic bool
		bytes   bool
	)

	cmd := &cobra.Command{
		Use:   "compare A B",
		Short: "Print the similarity of two strings",
		Long: `Print the similarity of A and B with six decimal places.

Strings are compared by Unicode code point unless --bytes is given.
--classic applies the original Winkler rules: at most four prefix
characters, and no bonus unless the Jaro score exceeds 0.7.`,
		Example: `  jaro compare martha marhta
  jaro compare --metric jaro dwayne duane`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("metric") {
				metric = a.cfg.Matcher.Metric
			}
			m, err := fuzzy.ParseMetric(metric)
			if err != nil {
				return err
			}

			p := a.cfg.Matcher.Params()
			if classic {
				p = jaro.ClassicParams()
			}

			var score float64
			switch {
			case m == fuzzy.MetricJaro && bytes:
				score = jaro.Similarity([]byte(args[0]), []byte(args[1]))
			case m == fuzzy.MetricJaro:
				score = jaro.String(args[0], args[1])
			case bytes:
				score = jaro.WinklerSimilarityWith([]byte(args[0]), []byte(args[1]), p)
			default:
				score = jaro.WinklerStringWith(args[0], args[1], p)
			}

			a.logger.Debug("compared",
				zap.String("metric", m.String()),
				zap.Bool("bytes", bytes),
				zap.Float64("score", score))

			_, err = fmt.Fprintf(a.stdout, "%.6f\n", score)
			return err
		},
	}

	cmd.Flags().StringVarP(&metric, "metric", "m", "winkler", "similarity metric (jaro, winkler)")
	cmd.Flags().BoolVar(&classic, "classic", false, "use the classic Winkler prefix cap and threshold")
	cmd.Flags().BoolVar(&bytes, "bytes", false, "compare bytes instead of code points")
	return cmd
}
