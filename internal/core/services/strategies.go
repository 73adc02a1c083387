package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
	"github.com/custodia-labs/themescope/internal/logger"
	"github.com/custodia-labs/themescope/internal/textnorm"
)

// Corpus is the read-only input shared by every tier and theme branch of an
// export run.
type Corpus struct {
	// Visits are the loaded visits in ascending time order.
	Visits []domain.Visit

	// Deduped holds one visit per canonical URL, newest first.
	Deduped []domain.Visit

	// Options are the run's export options.
	Options domain.ExportOptions
}

// NewCorpus deduplicates visits and bundles them with the run options.
func NewCorpus(visits []domain.Visit, opts domain.ExportOptions) *Corpus {
	return &Corpus{
		Visits:  visits,
		Deduped: Dedupe(visits, domain.PreferNewest),
		Options: opts,
	}
}

// ThemeStrategy is one tier of the level-1 fallback cascade.
type ThemeStrategy interface {
	// Name identifies the tier in logs.
	Name() string

	// Themes derives candidate themes in rank order. An error or a short
	// list lets the cascade move on to the next tier.
	Themes(ctx context.Context, corpus *Corpus) ([]domain.AggregatedTheme, error)
}

// RunCascade tries each tier in order and returns the first result holding
// at least minThemes themes, along with the tier's name. Tiers are never
// merged. When no tier reaches the minimum, the result of the last tier that
// produced any theme is returned; when none did, the result is empty.
func RunCascade(
	ctx context.Context, tiers []ThemeStrategy, corpus *Corpus, minThemes int,
) ([]domain.AggregatedTheme, string) {
	var fallback []domain.AggregatedTheme
	fallbackTier := ""
	for _, tier := range tiers {
		themes, err := tier.Themes(ctx, corpus)
		if err != nil {
			logger.Warn("Theme tier %s failed: %v", tier.Name(), err)
			continue
		}
		if len(themes) >= minThemes {
			logger.Debug("Theme tier %s produced %d themes", tier.Name(), len(themes))
			return themes, tier.Name()
		}
		logger.Warn("Theme tier %s produced %d themes, need %d", tier.Name(), len(themes), minThemes)
		if len(themes) > 0 {
			fallback, fallbackTier = themes, tier.Name()
		}
	}
	return fallback, fallbackTier
}

// TopicModelStrategy builds themes from the topic-model pipeline: diverse
// topics become themes labelled by their top terms, with representatives as
// sources.
type TopicModelStrategy struct {
	analyzer *AnalyzeService
}

// NewTopicModelStrategy creates the topic-model tier.
func NewTopicModelStrategy(analyzer *AnalyzeService) *TopicModelStrategy {
	return &TopicModelStrategy{analyzer: analyzer}
}

// Name implements ThemeStrategy.
func (s *TopicModelStrategy) Name() string { return "topic-model" }

// Themes implements ThemeStrategy.
func (s *TopicModelStrategy) Themes(ctx context.Context, corpus *Corpus) ([]domain.AggregatedTheme, error) {
	records, err := s.analyzer.AnalyzeVisits(ctx, corpus.Visits, corpus.Options.Analyze)
	if err != nil {
		return nil, err
	}
	themes := make([]domain.AggregatedTheme, 0, len(records))
	for _, r := range records {
		sources := make([]domain.Source, len(r.Representatives))
		for i, v := range r.Representatives {
			sources[i] = visitSource(v)
		}
		themes = append(themes, domain.AggregatedTheme{
			Label: themeLabel(r.Keywords),
			Rationale: fmt.Sprintf("%d visits about %s (category %s, time consistency %.2f).",
				r.ItemCount, strings.Join(r.Keywords[:min(6, len(r.Keywords))], ", "), r.Category, r.TimeConsistency),
			Sources: sources,
		})
	}
	return themes, nil
}

// themeLabel joins the leading keywords into a short label.
func themeLabel(keywords []string) string {
	return strings.Join(keywords[:min(3, len(keywords))], " ")
}

// LLMPersonaStrategy asks the LLM for core themes with sources, reading
// "title — url" items from the sampled history.
type LLMPersonaStrategy struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewLLMPersonaStrategy creates the persona tier.
func NewLLMPersonaStrategy(llm driven.LLMService, prompts driven.PromptStore) *LLMPersonaStrategy {
	return &LLMPersonaStrategy{llm: llm, prompts: prompts}
}

// Name implements ThemeStrategy.
func (s *LLMPersonaStrategy) Name() string { return "llm-persona" }

// Themes implements ThemeStrategy.
func (s *LLMPersonaStrategy) Themes(ctx context.Context, corpus *Corpus) ([]domain.AggregatedTheme, error) {
	if len(corpus.Visits) == 0 {
		return nil, nil
	}
	opts := corpus.Options.Analyze
	params := DeriveSampleParams(corpus.Visits, opts.Sampling.Diversity, opts.Sampling.MaxRows, opts.Prefer)
	sampled := Dedupe(Sample(corpus.Visits, params), opts.Prefer)
	items := make([]string, 0, len(sampled))
	for _, v := range sampled {
		if IsGenericLink(v.URL, v.Title) {
			continue
		}
		items = append(items, visitItem(v))
	}

	var payload themesPayload
	if err := generateJSON(ctx, s.llm, s.prompts, driven.PromptPersona, &payload, bulletList(items, maxItemRunes)); err != nil {
		return nil, err
	}
	return cleanThemes(payload.Themes), nil
}

// LLMTitlesStrategy re-derives themes from deduplicated page titles alone.
type LLMTitlesStrategy struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewLLMTitlesStrategy creates the direct-title tier.
func NewLLMTitlesStrategy(llm driven.LLMService, prompts driven.PromptStore) *LLMTitlesStrategy {
	return &LLMTitlesStrategy{llm: llm, prompts: prompts}
}

// Name implements ThemeStrategy.
func (s *LLMTitlesStrategy) Name() string { return "llm-titles" }

// Themes implements ThemeStrategy.
func (s *LLMTitlesStrategy) Themes(ctx context.Context, corpus *Corpus) ([]domain.AggregatedTheme, error) {
	seen := make(map[string]struct{})
	titles := make([]string, 0, len(corpus.Deduped))
	for _, v := range corpus.Deduped {
		t := strings.TrimSpace(v.Title)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		titles = append(titles, t)
	}
	if len(titles) == 0 {
		return nil, nil
	}

	var payload themesPayload
	if err := generateJSON(ctx, s.llm, s.prompts, driven.PromptTitles, &payload, bulletList(titles, maxTitleRunes)); err != nil {
		return nil, err
	}
	return cleanThemes(payload.Themes), nil
}

// cleanThemes drops unlabelled themes and any subthemes the model volunteered;
// subthemes are derived separately.
func cleanThemes(in []domain.AggregatedTheme) []domain.AggregatedTheme {
	out := make([]domain.AggregatedTheme, 0, len(in))
	for _, th := range in {
		th.Label = strings.TrimSpace(th.Label)
		if th.Label == "" {
			continue
		}
		th.Subthemes = nil
		th.Synthetic = false
		out = append(out, th)
	}
	return out
}

// heuristicTerms is how many frequent terms describe the synthetic theme.
const heuristicTerms = 8

// HeuristicStrategy synthesises a single theme from the most frequent terms
// in the corpus. It has no sources and is never expanded into subthemes.
type HeuristicStrategy struct{}

// Name implements ThemeStrategy.
func (HeuristicStrategy) Name() string { return "heuristic" }

// Themes implements ThemeStrategy.
func (HeuristicStrategy) Themes(_ context.Context, corpus *Corpus) ([]domain.AggregatedTheme, error) {
	terms := FrequentTerms(corpus.Deduped, heuristicTerms)
	if len(terms) == 0 {
		return nil, nil
	}
	return []domain.AggregatedTheme{{
		Label:     themeLabel(terms),
		Rationale: "Most frequent terms in browsing history: " + strings.Join(terms, ", ") + ".",
		Synthetic: true,
	}}, nil
}

// FrequentTerms returns the n most common non-stop-word tokens across visit
// titles and URLs, ties broken alphabetically.
func FrequentTerms(visits []domain.Visit, n int) []string {
	counts := make(map[string]int)
	for _, v := range visits {
		for _, tok := range textnorm.Tokens(v.Title + " " + v.URL) {
			counts[tok]++
		}
	}
	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	return terms[:min(n, len(terms))]
}
