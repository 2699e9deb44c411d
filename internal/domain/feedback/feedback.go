package feedback

import (
	"fmt"
	"time"
)

// Feedback limits.
const (
	MinRating      = 1
	MaxRating      = 5
	MaxCommentsLen = 1000
)

// Feedback is a user rating of an analysis (immutable value object).
type Feedback struct {
	id         string
	analysisID string
	rating     int
	comments   string
	helpful    []string
	unhelpful  []string
	createdAt  time.Time
}

// New validates and creates Feedback.
// Rating must be 1-5, comments at most 1000 chars.
func New(id, analysisID string, rating int, comments string, helpful, unhelpful []string, createdAt time.Time) (Feedback, error) {
	if id == "" {
		return Feedback{}, fmt.Errorf("feedback id is required")
	}
	if analysisID == "" {
		return Feedback{}, fmt.Errorf("analysis_id is required")
	}
	if rating < MinRating || rating > MaxRating {
		return Feedback{}, fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
	}
	if len(comments) > MaxCommentsLen {
		return Feedback{}, fmt.Errorf("comments too long (max %d chars)", MaxCommentsLen)
	}
	return Feedback{
		id: id, analysisID: analysisID, rating: rating, comments: comments,
		helpful: cloneStrings(helpful), unhelpful: cloneStrings(unhelpful), createdAt: createdAt,
	}, nil
}

// Reconstruct creates Feedback without validation (storage hydration).
func Reconstruct(id, analysisID string, rating int, comments string, helpful, unhelpful []string, createdAt time.Time) Feedback {
	return Feedback{
		id: id, analysisID: analysisID, rating: rating, comments: comments,
		helpful: helpful, unhelpful: unhelpful, createdAt: createdAt,
	}
}

// ID returns the feedback identifier.
func (f Feedback) ID() string { return f.id }

// AnalysisID returns the rated analysis.
func (f Feedback) AnalysisID() string { return f.analysisID }

// Rating returns the 1-5 rating.
func (f Feedback) Rating() int { return f.rating }

// Comments returns free-form comments.
func (f Feedback) Comments() string { return f.comments }

// Helpful returns ids of recommendations marked helpful.
func (f Feedback) Helpful() []string { return f.helpful }

// Unhelpful returns ids of recommendations marked unhelpful.
func (f Feedback) Unhelpful() []string { return f.unhelpful }

// CreatedAt returns the submission time.
func (f Feedback) CreatedAt() time.Time { return f.createdAt }

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
