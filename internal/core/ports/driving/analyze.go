package driving

import (
	"context"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

// AnalyzeService discovers themes in browsing history.
type AnalyzeService interface {
	// Analyze runs canonicalisation, sampling, topic modelling, diverse
	// selection, ranking and consistency scoring. Insufficient data yields an
	// empty result, not an error.
	Analyze(ctx context.Context, opts domain.AnalyzeOptions) (*domain.AnalysisResult, error)
}
