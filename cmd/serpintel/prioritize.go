package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/repository/record"
	"github.com/kailas-cloud/serpintel/internal/usecase/recommend"
)

func newPrioritizeCmd(_ *cli) *cobra.Command {
	var (
		intentName string
		file       string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "prioritize",
		Short: "Reorder a JSON list of recommendations for a search intent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			it, err := domintent.Parse(intentName)
			if err != nil {
				return fmt.Errorf("%w: %w", domain.ErrValidation, err)
			}

			in := cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open recommendations: %w", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			recs, err := readRecommendations(in)
			if err != nil {
				return err
			}
			if err = recommend.CheckRankable(len(recs)); err != nil {
				return err
			}
			ordered := recommend.NewPrioritizer().Prioritize(it, recs)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, recommendationRecords(ordered))
			}
			renderRecommendations(out, ordered)
			return nil
		},
	}
	cmd.Flags().StringVar(&intentName, "intent", "", "search intent (transactional, informational, exploratory, navigational)")
	cmd.Flags().StringVarP(&file, "file", "f", "-", "recommendations JSON file, - for stdin")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.MarkFlagRequired("intent")
	return cmd
}

// readRecommendations decodes and validates a JSON array of recommendations.
func readRecommendations(r io.Reader) ([]recommendation.Recommendation, error) {
	var raw []record.Recommendation
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode recommendations: %w", domain.ErrValidation, err)
	}
	out := make([]recommendation.Recommendation, 0, len(raw))
	for i, rr := range raw {
		effort := 0
		if rr.Effort != nil {
			effort = *rr.Effort
		}
		rec, err := recommendation.New(recommendation.Tactic(rr.Tactic), rr.Desc, rr.Priority, rr.Confidence, rr.Evidence, effort)
		if err != nil {
			return nil, fmt.Errorf("%w: recommendation %d: %w", domain.ErrValidation, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
