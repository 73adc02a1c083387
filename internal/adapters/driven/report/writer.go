package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
)

// Supported format names.
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// Formats returns the supported format names.
func Formats() []string {
	return []string{FormatJSON, FormatYAML, FormatMarkdown}
}

// ForFormat returns the writer for name. "md" and "yml" are accepted aliases.
func ForFormat(name string) (driven.ReportWriter, error) {
	switch strings.ToLower(name) {
	case FormatJSON:
		return NewJSONWriter(), nil
	case FormatYAML, "yml":
		return NewYAMLWriter(), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(), nil
	default:
		return nil, fmt.Errorf("%w: unknown report format %q (want one of %s)",
			domain.ErrConfiguration, name, strings.Join(Formats(), ", "))
	}
}

// normalised returns a copy of h with every nil slice replaced by an empty
// one, leaving the caller's value untouched.
func normalised(h *domain.ThemeHierarchy) *domain.ThemeHierarchy {
	out := &domain.ThemeHierarchy{}
	if h != nil {
		out.Themes = slices.Clone(h.Themes)
		for i := range out.Themes {
			out.Themes[i].Subthemes = slices.Clone(out.Themes[i].Subthemes)
		}
	}
	out.Normalise()
	return out
}
