// Package analysis persists analysis results in Postgres.
package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/domain/serp"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
	"github.com/kailas-cloud/serpintel/internal/repository/record"
)

const (
	// DefaultLimit is the page size used when a list query does not set one.
	DefaultLimit = 20
	// MaxLimit caps the page size of list queries.
	MaxLimit = 100

	// HighPriorityMax is the largest priority counted as high priority.
	HighPriorityMax = 2
	// HighConfidenceMin is the smallest confidence counted as high confidence.
	HighConfidenceMin = 0.8
)

const analysisColumns = `id, search_term, main_keyword, secondary_keywords, intent_type, intent_confidence, intent,
	has_market_gap, market_gap, execution_time, recs_intent_based, recs_gap_based, raw_data, created_at`

// Repository reads and writes analyses with their SERP features and recommendations.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new analysis repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type analysisRow struct {
	ID                string    `db:"id"`
	SearchTerm        string    `db:"search_term"`
	MainKeyword       string    `db:"main_keyword"`
	SecondaryKeywords []byte    `db:"secondary_keywords"`
	IntentType        string    `db:"intent_type"`
	IntentConfidence  float64   `db:"intent_confidence"`
	Intent            []byte    `db:"intent"`
	HasMarketGap      bool      `db:"has_market_gap"`
	MarketGap         []byte    `db:"market_gap"`
	ExecutionTime     float64   `db:"execution_time"`
	RecsIntentBased   bool      `db:"recs_intent_based"`
	RecsGapBased      bool      `db:"recs_gap_based"`
	RawData           []byte    `db:"raw_data"`
	CreatedAt         time.Time `db:"created_at"`
}

type featureRow struct {
	AnalysisID string `db:"analysis_id"`
	Type       string `db:"feature_type"`
	Position   *int   `db:"feature_position"`
	Data       []byte `db:"feature_data"`
}

type recommendationRow struct {
	AnalysisID  string        `db:"analysis_id"`
	Tactic      string        `db:"tactic_type"`
	Description string        `db:"description"`
	Priority    int           `db:"priority"`
	Confidence  float64       `db:"confidence"`
	Evidence    []byte        `db:"supporting_evidence"`
	Effort      sql.NullInt64 `db:"estimated_effort"`
}

// Save stores a fresh result, replacing any earlier analysis of the same search term together with its feedback.
// The analysis row and its children are written in one transaction. Use ReplaceRecommendations to revise a stored analysis.
func (r *Repository) Save(ctx context.Context, res domanalysis.Result) error {
	row, err := toRow(res)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM search_analyses WHERE search_term = $1`, row.SearchTerm); err != nil {
		return fmt.Errorf("delete previous analysis: %w", err)
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO search_analyses (`+analysisColumns+`)
		VALUES (:id, :search_term, :main_keyword, :secondary_keywords, :intent_type, :intent_confidence, :intent,
			:has_market_gap, :market_gap, :execution_time, :recs_intent_based, :recs_gap_based, :raw_data, :created_at)
	`, row)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}

	for _, f := range res.Features() {
		data, mErr := json.Marshal(f.Data())
		if mErr != nil {
			return fmt.Errorf("encode feature %s: %w", f.Type(), mErr)
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO serp_features (analysis_id, feature_type, feature_position, feature_data)
			VALUES ($1, $2, $3, $4)
		`, row.ID, string(f.Type()), f.Position(), data); err != nil {
			return fmt.Errorf("insert feature %s: %w", f.Type(), err)
		}
	}

	if err = insertRecommendations(ctx, tx, row.ID, res.Recommendations()); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit analysis: %w", err)
	}
	return nil
}

// ReplaceRecommendations swaps the recommendation set of a stored analysis in place.
// The analysis row is updated, never deleted, so feedback attached to it survives.
func (r *Repository) ReplaceRecommendations(ctx context.Context, id string, set recommendation.Set) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE search_analyses SET recs_intent_based = $2, recs_gap_based = $3 WHERE id = $1
	`, id, set.IntentBased(), set.MarketGapBased())
	if err != nil {
		return fmt.Errorf("update analysis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update analysis: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("analysis %s: %w", id, domain.ErrNotFound)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM recommendations WHERE analysis_id = $1`, id); err != nil {
		return fmt.Errorf("delete previous recommendations: %w", err)
	}
	if err = insertRecommendations(ctx, tx, id, set); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit recommendations: %w", err)
	}
	return nil
}

func insertRecommendations(ctx context.Context, tx *sqlx.Tx, analysisID string, set recommendation.Set) error {
	for i, rec := range set.Items() {
		evidence, err := json.Marshal(nonNil(rec.Evidence()))
		if err != nil {
			return fmt.Errorf("encode recommendation evidence: %w", err)
		}
		var effort sql.NullInt64
		if e := rec.Effort(); e > 0 {
			effort = sql.NullInt64{Int64: int64(e), Valid: true}
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO recommendations
				(analysis_id, ordinal, tactic_type, description, priority, confidence, supporting_evidence, estimated_effort)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, analysisID, i, string(rec.Tactic()), rec.Description(), rec.Priority(), rec.Confidence(), evidence, effort); err != nil {
			return fmt.Errorf("insert recommendation: %w", err)
		}
	}
	return nil
}

// GetByID loads one analysis with its features and recommendations.
func (r *Repository) GetByID(ctx context.Context, id string) (domanalysis.Result, error) {
	return r.getOne(ctx, `SELECT `+analysisColumns+` FROM search_analyses WHERE id = $1`, id)
}

// GetByTerm loads the latest analysis of a normalized search term.
func (r *Repository) GetByTerm(ctx context.Context, term string) (domanalysis.Result, error) {
	return r.getOne(ctx, `SELECT `+analysisColumns+` FROM search_analyses WHERE search_term = $1`, term)
}

func (r *Repository) getOne(ctx context.Context, query string, arg any) (domanalysis.Result, error) {
	var row analysisRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domanalysis.Result{}, fmt.Errorf("analysis %v: %w", arg, domain.ErrNotFound)
		}
		return domanalysis.Result{}, fmt.Errorf("get analysis: %w", err)
	}
	results, err := r.hydrate(ctx, []analysisRow{row})
	if err != nil {
		return domanalysis.Result{}, err
	}
	return results[0], nil
}

// List returns analyses newest first.
func (r *Repository) List(ctx context.Context, f domanalysis.Query) ([]domanalysis.Result, error) {
	query := `SELECT ` + analysisColumns + ` FROM search_analyses`

	var where []string
	var args []any
	if f.SearchTerm != "" {
		args = append(args, f.SearchTerm)
		where = append(where, fmt.Sprintf("search_term = $%d", len(args)))
	}
	if f.Intent != "" {
		args = append(args, string(f.Intent))
		where = append(where, fmt.Sprintf("intent_type = $%d", len(args)))
	}
	if f.HasGap != nil {
		args = append(args, *f.HasGap)
		where = append(where, fmt.Sprintf("has_market_gap = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	limit, offset := page(f.Limit, f.Offset)
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var rows []analysisRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return r.hydrate(ctx, rows)
}

// ListByIntent returns one page of analyses classified as the given intent.
func (r *Repository) ListByIntent(ctx context.Context, it domintent.Type, limit, offset int) ([]domanalysis.Result, error) {
	return r.List(ctx, domanalysis.Query{Intent: it, Limit: limit, Offset: offset})
}

// ListWithGap returns one page of analyses that detected a market gap.
func (r *Repository) ListWithGap(ctx context.Context, limit, offset int) ([]domanalysis.Result, error) {
	hasGap := true
	return r.List(ctx, domanalysis.Query{HasGap: &hasGap, Limit: limit, Offset: offset})
}

// Recommendations returns stored recommendations ordered by priority, then confidence.
func (r *Repository) Recommendations(ctx context.Context, f recommendation.Filter) ([]recommendation.Recommendation, error) {
	query := `SELECT analysis_id, tactic_type, description, priority, confidence, supporting_evidence, estimated_effort
		FROM recommendations`

	var where []string
	var args []any
	if f.AnalysisID != "" {
		args = append(args, f.AnalysisID)
		where = append(where, fmt.Sprintf("analysis_id = $%d", len(args)))
	}
	if f.Tactic != "" {
		args = append(args, string(f.Tactic))
		where = append(where, fmt.Sprintf("tactic_type = $%d", len(args)))
	}
	if f.MinConfidence > 0 {
		args = append(args, f.MinConfidence)
		where = append(where, fmt.Sprintf("confidence >= $%d", len(args)))
	}
	if f.MaxPriority > 0 {
		args = append(args, f.MaxPriority)
		where = append(where, fmt.Sprintf("priority <= $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY priority ASC, confidence DESC, ordinal ASC"

	var rows []recommendationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	out := make([]recommendation.Recommendation, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// HighPriority returns recommendations with priority 1 or 2.
func (r *Repository) HighPriority(ctx context.Context, analysisID string) ([]recommendation.Recommendation, error) {
	return r.Recommendations(ctx, recommendation.Filter{AnalysisID: analysisID, MaxPriority: HighPriorityMax})
}

// HighConfidence returns recommendations with confidence of at least 0.8.
func (r *Repository) HighConfidence(ctx context.Context, analysisID string) ([]recommendation.Recommendation, error) {
	return r.Recommendations(ctx, recommendation.Filter{AnalysisID: analysisID, MinConfidence: HighConfidenceMin})
}

// Delete removes an analysis and, by cascade, its children.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM search_analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("analysis %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// hydrate loads the children of the given rows with two queries and assembles results in row order.
func (r *Repository) hydrate(ctx context.Context, rows []analysisRow) ([]domanalysis.Result, error) {
	if len(rows) == 0 {
		return []domanalysis.Result{}, nil
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	featQuery, featArgs, err := sqlx.In(`
		SELECT analysis_id, feature_type, feature_position, feature_data
		FROM serp_features WHERE analysis_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("build feature query: %w", err)
	}
	var feats []featureRow
	if err = r.db.SelectContext(ctx, &feats, r.db.Rebind(featQuery), featArgs...); err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}

	recQuery, recArgs, err := sqlx.In(`
		SELECT analysis_id, tactic_type, description, priority, confidence, supporting_evidence, estimated_effort
		FROM recommendations WHERE analysis_id IN (?) ORDER BY ordinal`, ids)
	if err != nil {
		return nil, fmt.Errorf("build recommendation query: %w", err)
	}
	var recs []recommendationRow
	if err = r.db.SelectContext(ctx, &recs, r.db.Rebind(recQuery), recArgs...); err != nil {
		return nil, fmt.Errorf("load recommendations: %w", err)
	}

	featsByID := make(map[string][]feature.Feature, len(rows))
	for _, f := range feats {
		var data map[string]any
		if len(f.Data) > 0 {
			if err = json.Unmarshal(f.Data, &data); err != nil {
				return nil, fmt.Errorf("decode feature data: %w", err)
			}
		}
		featsByID[f.AnalysisID] = append(featsByID[f.AnalysisID], feature.Reconstruct(feature.Type(f.Type), f.Position, data))
	}
	recsByID := make(map[string][]recommendation.Recommendation, len(rows))
	for _, rr := range recs {
		rec, rErr := rr.toDomain()
		if rErr != nil {
			return nil, rErr
		}
		recsByID[rr.AnalysisID] = append(recsByID[rr.AnalysisID], rec)
	}

	out := make([]domanalysis.Result, len(rows))
	for i, row := range rows {
		res, hErr := row.toDomain(featsByID[row.ID], recsByID[row.ID])
		if hErr != nil {
			return nil, hErr
		}
		out[i] = res
	}
	return out, nil
}

func toRow(res domanalysis.Result) (analysisRow, error) {
	in := res.Intent()
	intentJSON, err := json.Marshal(record.FromIntent(in))
	if err != nil {
		return analysisRow{}, fmt.Errorf("encode intent: %w", err)
	}
	secondary, err := json.Marshal(record.FromKeywords(in.SecondaryKeywords()))
	if err != nil {
		return analysisRow{}, fmt.Errorf("encode secondary keywords: %w", err)
	}
	gapJSON, err := json.Marshal(record.FromMarketGap(res.MarketGap()))
	if err != nil {
		return analysisRow{}, fmt.Errorf("encode market gap: %w", err)
	}
	var raw []byte
	if p := res.RawData(); p != nil {
		if raw, err = json.Marshal(record.FromPayload(*p)); err != nil {
			return analysisRow{}, fmt.Errorf("encode raw data: %w", err)
		}
	}
	return analysisRow{
		ID:                res.ID(),
		SearchTerm:        res.SearchTerm(),
		MainKeyword:       in.MainKeyword().Text(),
		SecondaryKeywords: secondary,
		IntentType:        string(in.Type()),
		IntentConfidence:  in.Confidence(),
		Intent:            intentJSON,
		HasMarketGap:      res.MarketGap().Detected(),
		MarketGap:         gapJSON,
		ExecutionTime:     res.ExecutionTime().Seconds(),
		RecsIntentBased:   res.Recommendations().IntentBased(),
		RecsGapBased:      res.Recommendations().MarketGapBased(),
		RawData:           raw,
		CreatedAt:         res.Timestamp().UTC(),
	}, nil
}

func (row analysisRow) toDomain(feats []feature.Feature, recs []recommendation.Recommendation) (domanalysis.Result, error) {
	var in record.Intent
	if err := json.Unmarshal(row.Intent, &in); err != nil {
		return domanalysis.Result{}, fmt.Errorf("decode intent of %s: %w", row.ID, err)
	}
	var mg record.MarketGap
	if err := json.Unmarshal(row.MarketGap, &mg); err != nil {
		return domanalysis.Result{}, fmt.Errorf("decode market gap of %s: %w", row.ID, err)
	}
	var raw *serp.Payload
	if len(row.RawData) > 0 && string(row.RawData) != "null" {
		var p record.Payload
		if err := json.Unmarshal(row.RawData, &p); err != nil {
			return domanalysis.Result{}, fmt.Errorf("decode raw data of %s: %w", row.ID, err)
		}
		payload := p.ToPayload()
		raw = &payload
	}
	if feats == nil {
		feats = []feature.Feature{}
	}

	return domanalysis.Reconstruct(
		row.ID, row.SearchTerm, row.CreatedAt, in.ToIntent(), mg.ToMarketGap(), feats,
		recommendation.ReconstructSet(recs, row.RecsIntentBased, row.RecsGapBased),
		raw, time.Duration(row.ExecutionTime*float64(time.Second)),
	), nil
}

func (row recommendationRow) toDomain() (recommendation.Recommendation, error) {
	var evidence []string
	if len(row.Evidence) > 0 {
		if err := json.Unmarshal(row.Evidence, &evidence); err != nil {
			return recommendation.Recommendation{}, fmt.Errorf("decode recommendation evidence: %w", err)
		}
	}
	return recommendation.Reconstruct(
		recommendation.Tactic(row.Tactic), row.Description, row.Priority, row.Confidence, evidence, int(row.Effort.Int64),
	), nil
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)
	return limit, max(offset, 0)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
