package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	"github.com/kailas-cloud/serpintel/internal/domain/keyword"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/repository/record"
)

// renderAnalysis prints a human-readable summary of one analysis.
func renderAnalysis(w io.Writer, res domanalysis.Result) {
	in := res.Intent()
	mg := res.MarketGap()

	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetStyle(table.StyleLight)
	summary.SetTitle("Analysis: " + res.SearchTerm())
	summary.AppendRows([]table.Row{
		{"ID", res.ID()},
		{"Intent", fmt.Sprintf("%s (%.2f)", in.Type().Title(), in.Confidence())},
		{"Main keyword", in.MainKeyword().Text()},
		{"Secondary", strings.Join(keyword.Texts(in.SecondaryKeywords()), ", ")},
		{"Signals", strings.Join(in.Signals(), ", ")},
		{"Market gap", gapSummary(res)},
		{"Execution", res.ExecutionTime().Round(time.Millisecond).String()},
	})
	if mg.Detected() {
		summary.AppendRow(table.Row{"Gap detail", mg.Description()})
	}
	summary.Render()

	if fs := res.Features(); len(fs) > 0 {
		ft := table.NewWriter()
		ft.SetOutputMirror(w)
		ft.SetStyle(table.StyleLight)
		ft.AppendHeader(table.Row{"Feature", "Position"})
		for _, f := range fs {
			pos := "-"
			if p := f.Position(); p != nil {
				pos = strconv.Itoa(*p)
			}
			ft.AppendRow(table.Row{string(f.Type()), pos})
		}
		ft.Render()
	}

	renderRecommendations(w, res.Recommendations().Items())
}

// renderRecommendations prints recommendations in the order given.
func renderRecommendations(w io.Writer, recs []recommendation.Recommendation) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Tactic", "Priority", "Confidence", "Effort", "Description"})
	for i, r := range recs {
		effort := "-"
		if r.Effort() > 0 {
			effort = strconv.Itoa(r.Effort())
		}
		t.AppendRow(table.Row{i + 1, string(r.Tactic()), r.Priority(), fmt.Sprintf("%.2f", r.Confidence()), effort, r.Description()})
	}
	if len(recs) == 0 {
		t.AppendFooter(table.Row{"", "no recommendations"})
	}
	t.Render()
}

func gapSummary(res domanalysis.Result) string {
	mg := res.MarketGap()
	if !mg.Detected() {
		return "not detected"
	}
	return fmt.Sprintf("opportunity %.2f, competition %.2f", mg.OpportunityScore(), mg.CompetitionLevel())
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// recommendationRecords converts recommendations to their JSON shape.
func recommendationRecords(recs []recommendation.Recommendation) []record.Recommendation {
	out := make([]record.Recommendation, len(recs))
	for i, r := range recs {
		out[i] = record.FromRecommendation(r)
	}
	return out
}
