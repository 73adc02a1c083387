package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
	"github.com/custodia-labs/themescope/internal/core/ports/driving"
	"github.com/custodia-labs/themescope/internal/logger"
	"github.com/custodia-labs/themescope/internal/textnorm"
)

// Ensure AnalyzeService implements the interface.
var _ driving.AnalyzeService = (*AnalyzeService)(nil)

// AnalyzeService turns browsing history into ranked theme records.
type AnalyzeService struct {
	history driven.HistoryReader
	topics  driven.TopicModel
	now     func() time.Time
}

// NewAnalyzeService creates a new analysis service.
func NewAnalyzeService(history driven.HistoryReader, topics driven.TopicModel) *AnalyzeService {
	return &AnalyzeService{
		history: history,
		topics:  topics,
		now:     time.Now,
	}
}

// Analyze loads history and runs the theme pipeline over it.
func (s *AnalyzeService) Analyze(ctx context.Context, opts domain.AnalyzeOptions) (*domain.AnalysisResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	logger.Section("Theme Analysis")
	logger.Info("Run %s", runID)

	visits, err := s.history.Load(ctx, opts.History)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	logger.Debug("Loaded %d visits", len(visits))

	themes, err := s.AnalyzeVisits(ctx, visits, opts)
	if err != nil {
		return nil, err
	}
	return &domain.AnalysisResult{
		RunID:       runID,
		GeneratedAt: s.now().UTC(),
		Themes:      themes,
	}, nil
}

// AnalyzeVisits runs sampling, deduplication, topic modelling, diverse
// selection, ranking and consistency scoring over already-loaded visits.
// Insufficient data yields no themes and no error.
func (s *AnalyzeService) AnalyzeVisits(
	ctx context.Context, visits []domain.Visit, opts domain.AnalyzeOptions,
) ([]domain.ThemeRecord, error) {
	if len(visits) == 0 {
		logger.Debug("No visits in range")
		return []domain.ThemeRecord{}, nil
	}

	params := DeriveSampleParams(visits, opts.Sampling.Diversity, opts.Sampling.MaxRows, opts.Prefer)
	sampled := Sample(visits, params)
	logger.Debug("Sampled %d of %d visits (bucket cap %d, domain cap %d)",
		len(sampled), len(visits), params.PerBucketCap, params.PerDomainCap)

	if opts.Sampling.InterestOnly {
		sampled = FilterInterests(sampled, opts.Sampling.MinInterestScore)
		logger.Debug("Interest filter kept %d visits", len(sampled))
	}
	if len(sampled) > opts.Sampling.MaxRows {
		sampled = sampled[:opts.Sampling.MaxRows]
	}

	docs := Dedupe(sampled, opts.Prefer)
	texts := make([]string, len(docs))
	for i, v := range docs {
		texts[i] = textnorm.Normalize(v.Title + " " + v.URL)
	}
	logger.Debug("Modelling %d deduplicated visits", len(docs))

	fit, err := s.topics.Fit(ctx, texts, opts.Selection.DesiredK)
	if errors.Is(err, domain.ErrInsufficientData) {
		logger.Warn("Insufficient data for topic modelling")
		return []domain.ThemeRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: topic model: %w", domain.ErrCollaboratorFailure, err)
	}

	tops := TopTerms(fit, domain.DefaultTopTerms)
	assignments := DominantTopics(fit)
	counts := TopicCounts(assignments, fit.TopicCount())

	order := make([]int, fit.TopicCount())
	for i := range order {
		order[i] = i
	}
	if opts.Selection.Diverse {
		order = SelectDiverseTopics(fit.TopicTerms, counts, tops, SelectionParams{
			DesiredK:         min(opts.Selection.DesiredK, fit.TopicCount()),
			Lambda:           opts.Selection.Lambda,
			JaccardThreshold: opts.Selection.JaccardThreshold,
		})
	}
	logger.Debug("Selected topics %v", order)

	members := make([][]domain.Visit, fit.TopicCount())
	for d, t := range assignments {
		if t >= 0 {
			members[t] = append(members[t], docs[d])
		}
	}

	themes := make([]domain.ThemeRecord, 0, len(order))
	for _, t := range order {
		group := members[t]
		if len(group) == 0 || len(group) < opts.Sampling.MinThemeSize {
			logger.Debug("Topic %d dropped: %d visits", t, len(group))
			continue
		}
		themes = append(themes, domain.ThemeRecord{
			ID:              t,
			Keywords:        tops[t],
			ItemCount:       len(group),
			TimeConsistency: Consistency(group),
			Representatives: RankRepresentatives(group, opts.Prefer),
			Category:        Categorize(tops[t]),
		})
	}
	logger.Info("Found %d themes", len(themes))
	return themes, nil
}
