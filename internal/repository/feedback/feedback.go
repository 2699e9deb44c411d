// Package feedback persists user ratings of analyses.
package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domfeedback "github.com/kailas-cloud/serpintel/internal/domain/feedback"
)

// foreignKeyViolation is the Postgres SQLSTATE for a missing referenced row.
const foreignKeyViolation = "23503"

// Repository stores feedback rows.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new feedback repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type feedbackRow struct {
	ID         string    `db:"id"`
	AnalysisID string    `db:"analysis_id"`
	Rating     int       `db:"rating"`
	Comments   string    `db:"comments"`
	Helpful    []byte    `db:"helpful_recommendations"`
	Unhelpful  []byte    `db:"unhelpful_recommendations"`
	CreatedAt  time.Time `db:"created_at"`
}

// Save inserts feedback. Feedback for an unknown analysis returns domain.ErrNotFound.
func (r *Repository) Save(ctx context.Context, f domfeedback.Feedback) error {
	helpful, err := json.Marshal(nonNil(f.Helpful()))
	if err != nil {
		return fmt.Errorf("encode helpful recommendations: %w", err)
	}
	unhelpful, err := json.Marshal(nonNil(f.Unhelpful()))
	if err != nil {
		return fmt.Errorf("encode unhelpful recommendations: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analysis_feedback
			(id, analysis_id, rating, comments, helpful_recommendations, unhelpful_recommendations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, f.ID(), f.AnalysisID(), f.Rating(), f.Comments(), helpful, unhelpful, f.CreatedAt().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("analysis %s: %w", f.AnalysisID(), domain.ErrNotFound)
		}
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// ListByAnalysis returns the feedback of one analysis, newest first.
func (r *Repository) ListByAnalysis(ctx context.Context, analysisID string) ([]domfeedback.Feedback, error) {
	var rows []feedbackRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, analysis_id, rating, comments, helpful_recommendations, unhelpful_recommendations, created_at
		FROM analysis_feedback
		WHERE analysis_id = $1
		ORDER BY created_at DESC
	`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	out := make([]domfeedback.Feedback, 0, len(rows))
	for _, row := range rows {
		var helpful, unhelpful []string
		if err = json.Unmarshal(row.Helpful, &helpful); err != nil {
			return nil, fmt.Errorf("decode helpful recommendations: %w", err)
		}
		if err = json.Unmarshal(row.Unhelpful, &unhelpful); err != nil {
			return nil, fmt.Errorf("decode unhelpful recommendations: %w", err)
		}
		out = append(out, domfeedback.Reconstruct(
			row.ID, row.AnalysisID, row.Rating, row.Comments, helpful, unhelpful, row.CreatedAt,
		))
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
