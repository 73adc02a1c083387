package domain

import (
	"fmt"
	"time"
)

// Default run options, mirroring the CLI defaults.
const (
	DefaultTopics          = 10
	DefaultMaxRows         = 100000
	DefaultDiversity       = 0.5
	DefaultMinThemeSize    = 50
	DefaultLambda          = 0.7
	DefaultJaccard         = 0.6
	DefaultMinInterest     = 1
	DefaultTopTerms        = 10
	DefaultRelevanceTopN   = 800
	DefaultSubthemeK       = 8
	DefaultWorkers         = 1
	DefaultThemesMin       = 5
	DefaultThemesMax       = 8
	DefaultSubthemesMin    = 2
	DefaultSubthemesMax    = 4
	DefaultSourcesMin      = 2
	DefaultSourcesMax      = 4
	DefaultSubthemeSources = 20
)

// Method selects the primary theme extraction strategy.
type Method string

// Available extraction methods.
const (
	// MethodNMF uses the topic model and diverse selector.
	MethodNMF Method = "nmf"

	// MethodLLM asks the LLM for a persona directly.
	MethodLLM Method = "llm"
)

// IsValid returns true if the method is recognised.
func (m Method) IsValid() bool {
	return m == MethodNMF || m == MethodLLM
}

// Bounds is an inclusive [Min, Max] cardinality range.
type Bounds struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Validate reports ErrConfiguration for negative or inverted bounds.
func (b Bounds) Validate(name string) error {
	if b.Min < 0 || b.Max < 0 {
		return fmt.Errorf("%w: %s bounds must be non-negative (got %d..%d)", ErrConfiguration, name, b.Min, b.Max)
	}
	if b.Min > b.Max {
		return fmt.Errorf("%w: %s min %d exceeds max %d", ErrConfiguration, name, b.Min, b.Max)
	}
	return nil
}

// SamplingOptions configures the diversity sampler and interest filter.
type SamplingOptions struct {
	// Diversity in [0,1]; higher favours cross-month and cross-domain spread.
	Diversity float64

	// MaxRows caps visits considered before modelling.
	MaxRows int

	// MinThemeSize drops themes with fewer assigned visits.
	MinThemeSize int

	// InterestOnly drops generic links and low-interest visits.
	InterestOnly bool

	// MinInterestScore is the keyword-hit threshold for InterestOnly.
	MinInterestScore int
}

// SelectionOptions configures the diverse topic selector.
type SelectionOptions struct {
	// DesiredK is the requested topic count.
	DesiredK int

	// Lambda trades prevalence (1) against diversity (0).
	Lambda float64

	// JaccardThreshold marks near-duplicate topics by top-term overlap.
	JaccardThreshold float64

	// Diverse enables greedy diverse selection; otherwise all topics are kept.
	Diverse bool
}

// AnalyzeOptions configures a theme analysis run.
type AnalyzeOptions struct {
	History   HistoryQuery
	Sampling  SamplingOptions
	Selection SelectionOptions
	Prefer    Prefer
}

// DefaultAnalyzeOptions returns options matching the CLI defaults.
func DefaultAnalyzeOptions() AnalyzeOptions {
	return AnalyzeOptions{
		Sampling: SamplingOptions{
			Diversity:        DefaultDiversity,
			MaxRows:          DefaultMaxRows,
			MinThemeSize:     DefaultMinThemeSize,
			MinInterestScore: DefaultMinInterest,
		},
		Selection: SelectionOptions{
			DesiredK:         DefaultTopics,
			Lambda:           DefaultLambda,
			JaccardThreshold: DefaultJaccard,
			Diverse:          true,
		},
		Prefer: PreferNewest,
	}
}

// Validate checks the options before any processing begins.
func (o AnalyzeOptions) Validate() error {
	if !o.Prefer.IsValid() {
		return fmt.Errorf("%w: prefer must be %q or %q (got %q)", ErrConfiguration, PreferNewest, PreferOldest, o.Prefer)
	}
	if err := unitInterval("diversity", o.Sampling.Diversity); err != nil {
		return err
	}
	if err := unitInterval("lambda", o.Selection.Lambda); err != nil {
		return err
	}
	if err := unitInterval("jaccard_threshold", o.Selection.JaccardThreshold); err != nil {
		return err
	}
	if o.Sampling.MaxRows <= 0 {
		return fmt.Errorf("%w: max_rows must be positive (got %d)", ErrConfiguration, o.Sampling.MaxRows)
	}
	if o.Sampling.MinThemeSize < 0 {
		return fmt.Errorf("%w: min_theme_size must be non-negative (got %d)", ErrConfiguration, o.Sampling.MinThemeSize)
	}
	if o.Selection.DesiredK <= 0 {
		return fmt.Errorf("%w: desired_k must be positive (got %d)", ErrConfiguration, o.Selection.DesiredK)
	}
	if o.History.Since != nil && o.History.Until != nil && o.History.Since.After(*o.History.Until) {
		return fmt.Errorf("%w: since %s is after until %s", ErrConfiguration,
			o.History.Since.Format(time.DateOnly), o.History.Until.Format(time.DateOnly))
	}
	return nil
}

// SubthemeOptions configures subtheme derivation for one theme.
type SubthemeOptions struct {
	// RelevanceTopN caps items kept by the relevance filter.
	RelevanceTopN int

	// Sampling feeds the diversity sampler ahead of topic-model grouping.
	Sampling SamplingOptions

	// Prefer orders visits inside each sampling bucket.
	Prefer Prefer
}

// DefaultSubthemeOptions returns options matching the CLI defaults.
func DefaultSubthemeOptions() SubthemeOptions {
	analyze := DefaultAnalyzeOptions()
	return SubthemeOptions{
		RelevanceTopN: DefaultRelevanceTopN,
		Sampling:      analyze.Sampling,
		Prefer:        analyze.Prefer,
	}
}

// Validate checks the relevance cap and sampling dial.
func (o SubthemeOptions) Validate() error {
	if o.RelevanceTopN <= 0 {
		return fmt.Errorf("%w: relevance_top_n must be positive (got %d)", ErrConfiguration, o.RelevanceTopN)
	}
	if err := unitInterval("diversity", o.Sampling.Diversity); err != nil {
		return err
	}
	if o.Sampling.MaxRows <= 0 {
		return fmt.Errorf("%w: max_rows must be positive (got %d)", ErrConfiguration, o.Sampling.MaxRows)
	}
	if !o.Prefer.IsValid() {
		return fmt.Errorf("%w: prefer must be %q or %q (got %q)", ErrConfiguration, PreferNewest, PreferOldest, o.Prefer)
	}
	return nil
}

// ExportOptions configures a hierarchical export run.
type ExportOptions struct {
	Analyze AnalyzeOptions

	// Method selects the primary level-1 strategy.
	Method Method

	// Themes, Subthemes and Sources are the per-level cardinality bounds.
	Themes    Bounds
	Subthemes Bounds
	Sources   Bounds

	// RelevanceTopN caps items kept by the semantic filter per theme.
	RelevanceTopN int

	// Workers bounds concurrent per-theme subtheme derivation.
	Workers int
}

// SubthemeOptions derives the per-theme subtheme options of the run.
func (o ExportOptions) SubthemeOptions() SubthemeOptions {
	return SubthemeOptions{
		RelevanceTopN: o.RelevanceTopN,
		Sampling:      o.Analyze.Sampling,
		Prefer:        o.Analyze.Prefer,
	}
}

// DefaultExportOptions returns options matching the CLI defaults.
func DefaultExportOptions() ExportOptions {
	analyze := DefaultAnalyzeOptions()
	analyze.History.IncludeArchived = true
	return ExportOptions{
		Analyze:       analyze,
		Method:        MethodNMF,
		Themes:        Bounds{Min: DefaultThemesMin, Max: DefaultThemesMax},
		Subthemes:     Bounds{Min: DefaultSubthemesMin, Max: DefaultSubthemesMax},
		Sources:       Bounds{Min: DefaultSourcesMin, Max: DefaultSourcesMax},
		RelevanceTopN: DefaultRelevanceTopN,
		Workers:       DefaultWorkers,
	}
}

// Validate checks bounds and nested analysis options.
func (o ExportOptions) Validate() error {
	if err := o.Themes.Validate("themes"); err != nil {
		return err
	}
	if err := o.Subthemes.Validate("subthemes"); err != nil {
		return err
	}
	if err := o.Sources.Validate("sources"); err != nil {
		return err
	}
	if !o.Method.IsValid() {
		return fmt.Errorf("%w: unknown method %q", ErrConfiguration, o.Method)
	}
	if o.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1 (got %d)", ErrConfiguration, o.Workers)
	}
	if o.RelevanceTopN <= 0 {
		return fmt.Errorf("%w: relevance_top_n must be positive (got %d)", ErrConfiguration, o.RelevanceTopN)
	}
	return o.Analyze.Validate()
}

func unitInterval(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %s must be within [0,1] (got %g)", ErrConfiguration, name, v)
	}
	return nil
}
