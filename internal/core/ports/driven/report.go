package driven

import (
	"io"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

// ReportWriter renders results in one output format.
type ReportWriter interface {
	// Format returns the format name (e.g. "json", "yaml", "markdown").
	Format() string

	// Extension returns the file extension including the dot.
	Extension() string

	// WriteAnalysis renders a theme analysis.
	WriteAnalysis(w io.Writer, result *domain.AnalysisResult) error

	// WriteHierarchy renders a theme → subtheme → source hierarchy.
	WriteHierarchy(w io.Writer, hierarchy *domain.ThemeHierarchy) error
}
