package report

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
)

// Ensure YAMLWriter implements the interface.
var _ driven.ReportWriter = (*YAMLWriter)(nil)

// YAMLWriter writes YAML with the same field names as the JSON output.
type YAMLWriter struct{}

// NewYAMLWriter creates a YAMLWriter.
func NewYAMLWriter() *YAMLWriter {
	return &YAMLWriter{}
}

// Format returns "yaml".
func (w *YAMLWriter) Format() string { return FormatYAML }

// Extension returns ".yaml".
func (w *YAMLWriter) Extension() string { return ".yaml" }

// WriteAnalysis renders a theme analysis.
func (w *YAMLWriter) WriteAnalysis(out io.Writer, result *domain.AnalysisResult) error {
	return encodeYAML(out, result)
}

// WriteHierarchy renders the hierarchy.
func (w *YAMLWriter) WriteHierarchy(out io.Writer, hierarchy *domain.ThemeHierarchy) error {
	return encodeYAML(out, normalised(hierarchy))
}

func encodeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
