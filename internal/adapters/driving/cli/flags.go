package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

// historyFlags selects which visits a command reads.
type historyFlags struct {
	path            string
	since           string
	until           string
	includeArchived bool
	prioritizeOlder bool
}

func (f *historyFlags) bind(cmd *cobra.Command, archivedDefault bool) {
	cmd.Flags().StringVar(&f.path, "history", "", "path to the browser history database (default from settings, then auto-detect)")
	cmd.Flags().StringVar(&f.since, "since", "", "only visits on or after this date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&f.until, "until", "", "only visits on or before this date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().BoolVar(&f.includeArchived, "include-archived", archivedDefault, "also read the archived history database if present")
	cmd.Flags().BoolVar(&f.prioritizeOlder, "prioritize-older", false, "prefer older visits in sampling, dedup and ranking")
}

// query builds the history query. An unset --include-archived falls back to
// the configured default.
func (f *historyFlags) query(cmd *cobra.Command, settings *domain.AppSettings) (domain.HistoryQuery, error) {
	q := domain.HistoryQuery{IncludeArchived: f.includeArchived}
	if !cmd.Flags().Changed("include-archived") && settings != nil {
		q.IncludeArchived = settings.History.IncludeArchived
	}
	since, err := parseDate("since", f.since, false)
	if err != nil {
		return q, err
	}
	until, err := parseDate("until", f.until, true)
	if err != nil {
		return q, err
	}
	q.Since, q.Until = since, until
	return q, nil
}

func (f *historyFlags) prefer() domain.Prefer {
	if f.prioritizeOlder {
		return domain.PreferOldest
	}
	return domain.PreferNewest
}

// parseDate accepts a calendar date or an RFC 3339 timestamp. A bare date used
// as an upper bound covers the whole day.
func parseDate(name, value string, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: --%s %q is not a date (want YYYY-MM-DD)", domain.ErrConfiguration, name, value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Microsecond)
	}
	return &t, nil
}

// samplingFlags tune sampling and topic selection.
type samplingFlags struct {
	topics           int
	maxRows          int
	diversity        float64
	minThemeSize     int
	interestOnly     bool
	minInterestScore int
	diverseThemes    bool
	lambda           float64
	jaccard          float64
}

func (f *samplingFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.topics, "topics", domain.DefaultTopics, "number of topics to fit")
	fs.IntVar(&f.maxRows, "max-rows", domain.DefaultMaxRows, "maximum visits considered before modelling")
	fs.Float64Var(&f.diversity, "diversity", domain.DefaultDiversity, "0..1, higher favours cross-month and cross-domain spread")
	fs.IntVar(&f.minThemeSize, "min-theme-size", domain.DefaultMinThemeSize, "minimum visits for a theme to be kept")
	fs.BoolVar(&f.interestOnly, "interest-only", false, "drop generic links and keep interest content")
	fs.IntVar(&f.minInterestScore, "min-interest-score", domain.DefaultMinInterest, "minimum interest keyword hits with --interest-only")
	fs.BoolVar(&f.diverseThemes, "diverse-themes", true, "pick diverse themes rather than the most prevalent ones")
	fs.Float64Var(&f.lambda, "lambda", domain.DefaultLambda, "0..1 trade-off between prevalence (1) and diversity (0)")
	fs.Float64Var(&f.jaccard, "jaccard", domain.DefaultJaccard, "top-term overlap at which topics count as duplicates")
}

func (f *samplingFlags) apply(opts *domain.AnalyzeOptions) {
	opts.Sampling = domain.SamplingOptions{
		Diversity:        f.diversity,
		MaxRows:          f.maxRows,
		MinThemeSize:     f.minThemeSize,
		InterestOnly:     f.interestOnly,
		MinInterestScore: f.minInterestScore,
	}
	opts.Selection = domain.SelectionOptions{
		DesiredK:         f.topics,
		Lambda:           f.lambda,
		JaccardThreshold: f.jaccard,
		Diverse:          f.diverseThemes,
	}
}

// settingsOrDefaults reads settings, falling back to defaults when the store
// cannot be read.
func settingsOrDefaults(a *App) *domain.AppSettings {
	if a.Settings != nil {
		if s, err := a.Settings.Get(); err == nil {
			return s
		}
	}
	d := domain.DefaultAppSettings()
	return &d
}
