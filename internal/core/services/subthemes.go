package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
	"github.com/custodia-labs/themescope/internal/core/ports/driving"
	"github.com/custodia-labs/themescope/internal/logger"
	"github.com/custodia-labs/themescope/internal/textnorm"
)

// Ensure SubthemeService implements the interface.
var _ driving.SubthemeService = (*SubthemeService)(nil)

// embedBatchSize bounds texts per embedding request.
const embedBatchSize = 256

// SubthemeService groups the visits relevant to a theme into subthemes.
//
// Relevance uses embeddings when available and lexical overlap otherwise.
// Grouping tries, in order: LLM JSON grouping, k-means over embeddings, and
// the topic model over the relevant slice.
type SubthemeService struct {
	topics     driven.TopicModel
	clusterer  driven.Clusterer
	llm        driven.LLMService
	embeddings driven.EmbeddingService
	prompts    driven.PromptStore

	k             int
	groupSources  int
	labelByPrompt bool
}

// NewSubthemeService creates a subtheme service.
// The llm and embeddings parameters are optional (can be nil).
func NewSubthemeService(
	topics driven.TopicModel,
	clusterer driven.Clusterer,
	llm driven.LLMService,
	embeddings driven.EmbeddingService,
	prompts driven.PromptStore,
) *SubthemeService {
	return &SubthemeService{
		topics:        topics,
		clusterer:     clusterer,
		llm:           llm,
		embeddings:    embeddings,
		prompts:       prompts,
		k:             domain.DefaultSubthemeK,
		groupSources:  domain.DefaultSubthemeSources,
		labelByPrompt: llm != nil && prompts != nil,
	}
}

// relevantItem is a visit kept by the relevance filter.
type relevantItem struct {
	visit  domain.Visit
	vector []float32
}

// Subthemes implements driving.SubthemeService.
func (s *SubthemeService) Subthemes(
	ctx context.Context, label string, visits []domain.Visit, opts domain.SubthemeOptions,
) ([]domain.AggregatedSubtheme, error) {
	deduped := Dedupe(visits, domain.PreferNewest)
	if len(deduped) == 0 || strings.TrimSpace(label) == "" {
		return []domain.AggregatedSubtheme{}, nil
	}
	if opts.RelevanceTopN <= 0 {
		opts.RelevanceTopN = domain.DefaultRelevanceTopN
	}

	relevant := s.filterRelevant(ctx, label, deduped, opts.RelevanceTopN)
	logger.Debug("Subthemes %q: %d relevant of %d items", label, len(relevant), len(deduped))
	if len(relevant) == 0 {
		return []domain.AggregatedSubtheme{}, nil
	}

	var errs []error
	if s.llm != nil {
		subs, err := s.groupWithLLM(ctx, label, relevant)
		if err == nil && len(subs) > 0 {
			return subs, nil
		}
		logger.Warn("LLM subtheme grouping for %q failed: %v", label, err)
		errs = append(errs, err)
	}
	if s.clusterer != nil && relevant[0].vector != nil {
		subs, err := s.groupWithClusters(ctx, relevant)
		if err == nil && len(subs) > 0 {
			return subs, nil
		}
		logger.Warn("Cluster subtheme grouping for %q failed: %v", label, err)
		errs = append(errs, err)
	}
	if s.topics != nil {
		subs, err := s.groupWithTopics(ctx, relevant, opts)
		if err == nil {
			return subs, nil
		}
		if errors.Is(err, domain.ErrInsufficientData) {
			return []domain.AggregatedSubtheme{}, nil
		}
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("%w: subthemes for %q: %w", domain.ErrCollaboratorFailure, label, err)
	}
	return []domain.AggregatedSubtheme{}, nil
}

// filterRelevant ranks items against the label and keeps the top N.
func (s *SubthemeService) filterRelevant(ctx context.Context, label string, visits []domain.Visit, topN int) []relevantItem {
	if s.embeddings != nil {
		items, err := s.semanticFilter(ctx, label, visits, topN)
		if err == nil {
			return items
		}
		logger.Warn("Semantic filter failed, using lexical relevance: %v", err)
	}
	return s.lexicalFilter(label, visits, topN)
}

func (s *SubthemeService) semanticFilter(
	ctx context.Context, label string, visits []domain.Visit, topN int,
) ([]relevantItem, error) {
	query, err := s.embeddings.Embed(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("embed label: %w", err)
	}
	normalise(query)

	vectors := make([][]float32, 0, len(visits))
	for start := 0; start < len(visits); start += embedBatchSize {
		end := min(start+embedBatchSize, len(visits))
		texts := make([]string, 0, end-start)
		for _, v := range visits[start:end] {
			texts = append(texts, visitItem(v))
		}
		batch, err := s.embeddings.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed items %d-%d: %w", start, end, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embed items %d-%d: got %d vectors", start, end, len(batch))
		}
		vectors = append(vectors, batch...)
	}

	scores := make([]float64, len(visits))
	for i, vec := range vectors {
		normalise(vec)
		scores[i] = dot(vec, query)
	}
	order := rankIndices(scores, topN, false)
	out := make([]relevantItem, len(order))
	for i, idx := range order {
		out[i] = relevantItem{visit: visits[idx], vector: vectors[idx]}
	}
	return out, nil
}

// lexicalFilter scores items by how many label tokens they contain and drops
// items sharing none.
func (s *SubthemeService) lexicalFilter(label string, visits []domain.Visit, topN int) []relevantItem {
	want := make(map[string]struct{})
	for _, tok := range textnorm.Tokens(label) {
		want[tok] = struct{}{}
	}
	scores := make([]float64, len(visits))
	for i, v := range visits {
		seen := make(map[string]struct{})
		for _, tok := range textnorm.Tokens(visitItem(v)) {
			if _, ok := want[tok]; ok {
				seen[tok] = struct{}{}
			}
		}
		scores[i] = float64(len(seen))
	}
	order := rankIndices(scores, topN, true)
	out := make([]relevantItem, len(order))
	for i, idx := range order {
		out[i] = relevantItem{visit: visits[idx]}
	}
	return out
}

// rankIndices returns up to n indices by descending score, ties by index.
func rankIndices(scores []float64, n int, positiveOnly bool) []int {
	idx := make([]int, 0, len(scores))
	for i, sc := range scores {
		if positiveOnly && sc <= 0 {
			continue
		}
		idx = append(idx, i)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	return idx[:min(n, len(idx))]
}

func (s *SubthemeService) groupWithLLM(ctx context.Context, label string, items []relevantItem) ([]domain.AggregatedSubtheme, error) {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = visitItem(it.visit)
	}
	var payload subthemesPayload
	if err := generateJSON(ctx, s.llm, s.prompts, driven.PromptSubthemes, &payload, label, bulletList(lines, maxItemRunes)); err != nil {
		return nil, err
	}
	out := make([]domain.AggregatedSubtheme, 0, len(payload.Subthemes))
	for _, sub := range payload.Subthemes {
		sub.Label = strings.TrimSpace(sub.Label)
		if sub.Label == "" {
			continue
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *SubthemeService) groupWithClusters(ctx context.Context, items []relevantItem) ([]domain.AggregatedSubtheme, error) {
	vectors := make([][]float32, len(items))
	for i, it := range items {
		vectors[i] = it.vector
	}
	assign, err := s.clusterer.Cluster(ctx, vectors, s.k)
	if err != nil {
		return nil, fmt.Errorf("%w: cluster: %w", domain.ErrCollaboratorFailure, err)
	}
	return s.buildGroups(ctx, items, assign, nil), nil
}

func (s *SubthemeService) groupWithTopics(
	ctx context.Context, items []relevantItem, opts domain.SubthemeOptions,
) ([]domain.AggregatedSubtheme, error) {
	items = sampleRelevant(items, opts)
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = textnorm.Normalize(visitItem(it.visit))
	}
	fit, err := s.topics.Fit(ctx, texts, s.k)
	if err != nil {
		return nil, err
	}
	return s.buildGroups(ctx, items, DominantTopics(fit), TopTerms(fit, 3)), nil
}

// sampleRelevant runs the diversity sampler over relevant items and returns
// the survivors in their original relevance order. Items are already
// deduplicated, so the canonical URL identifies each one.
func sampleRelevant(items []relevantItem, opts domain.SubthemeOptions) []relevantItem {
	maxRows := opts.Sampling.MaxRows
	if maxRows <= 0 {
		maxRows = domain.DefaultMaxRows
	}
	prefer := opts.Prefer
	if !prefer.IsValid() {
		prefer = domain.PreferNewest
	}

	visits := make([]domain.Visit, len(items))
	rank := make(map[string]int, len(items))
	for i, it := range items {
		visits[i] = it.visit
		rank[Canonicalize(it.visit.URL)] = i
	}
	sampled := Sample(visits, DeriveSampleParams(visits, opts.Sampling.Diversity, maxRows, prefer))

	keep := make([]int, 0, len(sampled))
	for _, v := range sampled {
		keep = append(keep, rank[Canonicalize(v.URL)])
	}
	sort.Ints(keep)
	out := make([]relevantItem, len(keep))
	for i, idx := range keep {
		out[i] = items[idx]
	}
	if len(out) < len(items) {
		logger.Debug("Sampled %d of %d relevant items for topic grouping", len(out), len(items))
	}
	return out
}

// buildGroups turns assignments into subthemes ordered by each group's best
// ranked member. Labels come from topic terms when given, else from the LLM
// cluster-label prompt, else from the group's frequent terms.
func (s *SubthemeService) buildGroups(
	ctx context.Context, items []relevantItem, assign []int, terms [][]string,
) []domain.AggregatedSubtheme {
	var order []int
	members := make(map[int][]domain.Visit)
	for i, g := range assign {
		if i >= len(items) || g < 0 {
			continue
		}
		if _, ok := members[g]; !ok {
			order = append(order, g)
		}
		members[g] = append(members[g], items[i].visit)
	}

	out := make([]domain.AggregatedSubtheme, 0, len(order))
	for _, g := range order {
		group := members[g]
		label := ""
		if terms != nil && g < len(terms) {
			label = themeLabel(terms[g])
		}
		if label == "" {
			label = s.clusterLabel(ctx, group)
		}
		sources := make([]domain.Source, 0, min(len(group), s.groupSources))
		for _, v := range group[:min(len(group), s.groupSources)] {
			sources = append(sources, visitSource(v))
		}
		out = append(out, domain.AggregatedSubtheme{
			Label:     label,
			Rationale: fmt.Sprintf("%d related pages.", len(group)),
			Sources:   sources,
		})
	}
	return out
}

func (s *SubthemeService) clusterLabel(ctx context.Context, group []domain.Visit) string {
	fallback := themeLabel(FrequentTerms(group, 3))
	if !s.labelByPrompt {
		return fallback
	}
	tpl, err := s.prompts.Load(driven.PromptClusterLabel)
	if err != nil {
		return fallback
	}
	lines := make([]string, 0, min(len(group), labelItemsInPrompt))
	for _, v := range group[:min(len(group), labelItemsInPrompt)] {
		lines = append(lines, visitItem(v))
	}
	reply, err := s.llm.Generate(ctx, fmt.Sprintf(tpl, bulletList(lines, maxTitleRunes)), driven.GenerateOptions{
		Temperature: llmTemperature,
		MaxTokens:   16,
	})
	label := strings.Trim(strings.TrimSpace(reply), `"'.`)
	if err != nil || label == "" {
		return fallback
	}
	return label
}

func normalise(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := 0; i < len(a) && i < len(b); i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
