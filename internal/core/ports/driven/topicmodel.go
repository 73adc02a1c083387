package driven

import (
	"context"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

// TopicModel wraps an external document-term vectoriser and topic factorisation.
//
// Fit returns domain.ErrInsufficientData when the corpus is empty or no
// vocabulary survives minimum-frequency filtering. The fitted topic count may
// be lower than k for small corpora.
type TopicModel interface {
	Fit(ctx context.Context, docs []string, k int) (*domain.TopicFit, error)
}

// Clusterer partitions vectors into at most k groups.
// Assignments are deterministic for identical input.
type Clusterer interface {
	Cluster(ctx context.Context, vectors [][]float32, k int) ([]int, error)
}
