package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
	"github.com/custodia-labs/themescope/internal/core/ports/driving"
	"github.com/custodia-labs/themescope/internal/logger"
)

// Ensure HierarchyService implements the interface.
var _ driving.HierarchyService = (*HierarchyService)(nil)

// HierarchyService composes the theme → subtheme → source map.
//
// Level 1 runs the theme cascade and clamps the winner to the theme bounds.
// Level 2 asks the subtheme service for each non-synthetic theme, isolating
// failures to that theme. Level 3 clamps every source list.
type HierarchyService struct {
	history   driven.HistoryReader
	analyzer  *AnalyzeService
	subthemes driving.SubthemeService
	llm       driven.LLMService
	prompts   driven.PromptStore
	tiers     []ThemeStrategy
}

// NewHierarchyService creates a hierarchy service.
// The llm parameter is optional (can be nil); LLM tiers then fail over.
func NewHierarchyService(
	history driven.HistoryReader,
	analyzer *AnalyzeService,
	subthemes driving.SubthemeService,
	llm driven.LLMService,
	prompts driven.PromptStore,
) *HierarchyService {
	return &HierarchyService{
		history:   history,
		analyzer:  analyzer,
		subthemes: subthemes,
		llm:       llm,
		prompts:   prompts,
	}
}

// SetStrategies replaces the default theme cascade.
func (s *HierarchyService) SetStrategies(tiers ...ThemeStrategy) {
	s.tiers = tiers
}

// Strategies returns the cascade used for the given method.
func (s *HierarchyService) Strategies(method domain.Method) []ThemeStrategy {
	if s.tiers != nil {
		return s.tiers
	}
	var primary ThemeStrategy = NewTopicModelStrategy(s.analyzer)
	if method == domain.MethodLLM {
		primary = NewLLMPersonaStrategy(s.llm, s.prompts)
	}
	return []ThemeStrategy{
		primary,
		NewLLMTitlesStrategy(s.llm, s.prompts),
		HeuristicStrategy{},
	}
}

// Export implements driving.HierarchyService.
func (s *HierarchyService) Export(ctx context.Context, opts domain.ExportOptions) (*domain.ThemeHierarchy, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger.Section("Hierarchy Export")

	visits, err := s.history.Load(ctx, opts.Analyze.History)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	logger.Debug("Loaded %d visits", len(visits))

	h := &domain.ThemeHierarchy{}
	if len(visits) > 0 {
		h = s.Aggregate(ctx, NewCorpus(visits, opts))
	}
	h.Normalise()
	return h, nil
}

// Aggregate builds the clamped hierarchy for a prepared corpus. It never
// fails: collaborator errors shrink the result instead.
func (s *HierarchyService) Aggregate(ctx context.Context, corpus *Corpus) *domain.ThemeHierarchy {
	opts := corpus.Options

	candidates, tier := RunCascade(ctx, s.Strategies(opts.Method), corpus, opts.Themes.Min)
	selected := ClampSlice(candidates, opts.Themes)
	logger.Info("Using %d of %d themes from tier %q", len(selected), len(candidates), tier)

	themes := make([]domain.AggregatedTheme, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Workers))
	for i, th := range selected {
		g.Go(func() error {
			themes[i] = s.expand(gctx, th, corpus)
			return nil
		})
	}
	// Branches never return errors; failures are folded into empty lists.
	_ = g.Wait()

	h := &domain.ThemeHierarchy{Themes: themes}
	h.Normalise()
	return h
}

// expand clamps theme sources and derives the theme's subthemes.
func (s *HierarchyService) expand(ctx context.Context, th domain.AggregatedTheme, corpus *Corpus) domain.AggregatedTheme {
	opts := corpus.Options
	out := domain.AggregatedTheme{
		Label:     th.Label,
		Rationale: th.Rationale,
		Sources:   ClampSlice(th.Sources, opts.Sources),
		Synthetic: th.Synthetic,
	}
	if th.Synthetic || s.subthemes == nil {
		return out
	}

	subs, err := s.subthemes.Subthemes(ctx, th.Label, corpus.Visits, opts.SubthemeOptions())
	if err != nil {
		logger.Warn("Subthemes for %q failed: %v", th.Label, err)
		return out
	}
	subs = ClampSlice(subs, opts.Subthemes)
	out.Subthemes = make([]domain.AggregatedSubtheme, len(subs))
	for i, sub := range subs {
		out.Subthemes[i] = domain.AggregatedSubtheme{
			Label:     sub.Label,
			Rationale: sub.Rationale,
			Sources:   ClampSlice(sub.Sources, opts.Sources),
		}
	}
	logger.Debug("Theme %q: %d subthemes", th.Label, len(out.Subthemes))
	return out
}
