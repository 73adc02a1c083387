package driving

import (
	"context"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

// HierarchyService composes the theme → subtheme → source map.
type HierarchyService interface {
	// Export builds the clamped hierarchy. Only configuration errors and
	// history read failures are returned; collaborator failures are recovered.
	Export(ctx context.Context, opts domain.ExportOptions) (*domain.ThemeHierarchy, error)
}

// SubthemeService derives subthemes under a single theme or prompt.
type SubthemeService interface {
	// Subthemes groups visits relevant to label into subthemes.
	Subthemes(
		ctx context.Context, label string, visits []domain.Visit, opts domain.SubthemeOptions,
	) ([]domain.AggregatedSubtheme, error)
}
