package driven

import (
	"context"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

// HistoryReader delivers browsing-history visits.
// Timestamps are already converted to UTC. When IncludeArchived is set the
// archived record set is concatenated to the main one. Results are sorted
// by ascending visit time.
type HistoryReader interface {
	// Load reads visits within the query's date range.
	Load(ctx context.Context, query domain.HistoryQuery) ([]domain.Visit, error)
}
