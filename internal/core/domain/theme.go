package domain

import "time"

// MaxRepresentatives caps the representative items kept per theme.
const MaxRepresentatives = 15

// ThemeRecord is an analysed theme built from one selected topic.
type ThemeRecord struct {
	// ID is the topic index the theme was built from.
	ID int `json:"id" yaml:"id"`

	// Keywords are the topic's top terms.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// ItemCount is the number of visits assigned to the theme.
	ItemCount int `json:"count" yaml:"count"`

	// TimeConsistency is in [0,1]; higher means spread over more months.
	TimeConsistency float64 `json:"time_consistency" yaml:"time_consistency"`

	// Representatives are the highest-ranked visits, at most MaxRepresentatives.
	Representatives []Visit `json:"examples" yaml:"examples"`

	// Category is the interest bucket matched by the keywords.
	Category string `json:"category" yaml:"category"`
}

// AnalysisResult is the output of a theme analysis run.
type AnalysisResult struct {
	// RunID identifies the run in logs and reports.
	RunID string `json:"run_id" yaml:"run_id"`

	// GeneratedAt is when the run finished.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	// Themes are ordered by selection.
	Themes []ThemeRecord `json:"themes" yaml:"themes"`
}

// Source is a concrete page backing a theme or subtheme.
type Source struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// AggregatedSubtheme is the second level of the interest map.
type AggregatedSubtheme struct {
	Label     string   `json:"label" yaml:"label"`
	Rationale string   `json:"rationale" yaml:"rationale"`
	Sources   []Source `json:"sources" yaml:"sources"`
}

// AggregatedTheme is the top level of the interest map.
type AggregatedTheme struct {
	Label     string               `json:"label" yaml:"label"`
	Rationale string               `json:"rationale" yaml:"rationale"`
	Sources   []Source             `json:"sources" yaml:"sources"`
	Subthemes []AggregatedSubtheme `json:"subthemes" yaml:"subthemes"`

	// Synthetic marks a theme invented by the heuristic fallback tier.
	// Synthetic themes are never expanded into subthemes.
	Synthetic bool `json:"-" yaml:"-"`
}

// ThemeHierarchy is the terminal, serialisable output.
type ThemeHierarchy struct {
	Themes []AggregatedTheme `json:"themes" yaml:"themes"`
}

// Normalise replaces nil slices with empty ones so the serialised shape
// always carries [] rather than null.
func (h *ThemeHierarchy) Normalise() {
	if h.Themes == nil {
		h.Themes = []AggregatedTheme{}
	}
	for i := range h.Themes {
		th := &h.Themes[i]
		if th.Sources == nil {
			th.Sources = []Source{}
		}
		if th.Subthemes == nil {
			th.Subthemes = []AggregatedSubtheme{}
		}
		for j := range th.Subthemes {
			if th.Subthemes[j].Sources == nil {
				th.Subthemes[j].Sources = []Source{}
			}
		}
	}
}
