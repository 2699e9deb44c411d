package analysis

import "github.com/kailas-cloud/serpintel/internal/domain/intent"

// Query narrows listings of stored results. Zero values mean "any".
type Query struct {
	SearchTerm string
	Intent     intent.Type
	HasGap     *bool
	Limit      int
	Offset     int
}
