package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
)

// Ensure JSONWriter implements the interface.
var _ driven.ReportWriter = (*JSONWriter)(nil)

// JSONWriter writes indented JSON.
type JSONWriter struct {
	indent string
}

// NewJSONWriter creates a JSONWriter with two-space indentation.
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{indent: "  "}
}

// Format returns "json".
func (w *JSONWriter) Format() string { return FormatJSON }

// Extension returns ".json".
func (w *JSONWriter) Extension() string { return ".json" }

// WriteAnalysis renders a theme analysis.
func (w *JSONWriter) WriteAnalysis(out io.Writer, result *domain.AnalysisResult) error {
	if result.Themes == nil {
		copied := *result
		copied.Themes = []domain.ThemeRecord{}
		result = &copied
	}
	return w.encode(out, result)
}

// WriteHierarchy renders the hierarchy; empty lists are written as [].
func (w *JSONWriter) WriteHierarchy(out io.Writer, hierarchy *domain.ThemeHierarchy) error {
	return w.encode(out, normalised(hierarchy))
}

func (w *JSONWriter) encode(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", w.indent)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
