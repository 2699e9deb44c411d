package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/serpintel/internal/repository/record"
	analysisuc "github.com/kailas-cloud/serpintel/internal/usecase/analysis"
)

func newAnalyzeCmd(c *cli) *cobra.Command {
	var (
		maxResults int
		classifier string
		asJSON     bool
		persist    bool
	)
	cmd := &cobra.Command{
		Use:   "analyze <term>",
		Short: "Run one SERP analysis and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, c.cfg, c.logger, appOptions{
				withCache:    persist,
				withDatabase: persist,
				classifier:   classifier,
			})
			if err != nil {
				return err
			}
			defer a.Close()

			if maxResults == 0 {
				maxResults = c.cfg.Serp.MaxResults
			}
			res, err := a.analysis.Analyze(ctx, analysisuc.Request{Term: args[0], MaxResults: maxResults})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, record.FromAnalysis(res.WithoutRawData()))
			}
			renderAnalysis(out, res)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "organic results to request (default serp.max_results)")
	cmd.Flags().StringVar(&classifier, "classifier", "", "intent classifier: strategy or basic (default intent.classifier)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	cmd.Flags().BoolVar(&persist, "persist", false, "use the configured cache and database")
	return cmd
}
