package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockHistoryReader implements driven.HistoryReader for testing.
type mockHistoryReader struct {
	visits  []domain.Visit
	err     error
	lastQry domain.HistoryQuery
	calls   int
}

func (m *mockHistoryReader) Load(_ context.Context, q domain.HistoryQuery) ([]domain.Visit, error) {
	m.lastQry = q
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.visits, nil
}

// mockTopicModel implements driven.TopicModel for testing.
// When fitFn is nil it returns fit (or err).
type mockTopicModel struct {
	fit   *domain.TopicFit
	err   error
	fitFn func(docs []string, k int) (*domain.TopicFit, error)
	docs  []string
	k     int
}

func (m *mockTopicModel) Fit(_ context.Context, docs []string, k int) (*domain.TopicFit, error) {
	m.docs, m.k = docs, k
	if m.fitFn != nil {
		return m.fitFn(docs, k)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.fit, nil
}

// keywordTopicModel assigns each document to the first topic whose keyword it
// contains. Topics without any document keep a zero row.
func keywordTopicModel(keywords ...string) *mockTopicModel {
	return &mockTopicModel{fitFn: func(docs []string, _ int) (*domain.TopicFit, error) {
		if len(docs) == 0 {
			return nil, domain.ErrInsufficientData
		}
		fit := &domain.TopicFit{Vocabulary: keywords}
		for t := range keywords {
			row := make([]float64, len(keywords))
			row[t] = 1
			fit.TopicTerms = append(fit.TopicTerms, row)
		}
		for _, d := range docs {
			row := make([]float64, len(keywords))
			for t, kw := range keywords {
				if strings.Contains(d, kw) {
					row[t] = 1
					break
				}
			}
			fit.DocumentTopics = append(fit.DocumentTopics, row)
		}
		return fit, nil
	}}
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu        sync.Mutex
	responses []string
	response  string
	err       error
	prompts   []string
	opts      []driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) > 0 {
		r := m.responses[0]
		m.responses = m.responses[1:]
		return r, nil
	}
	return m.response, nil
}

func (m *mockLLMService) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return m.response, m.err
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }

func (m *mockLLMService) Ping(_ context.Context) error { return nil }

func (m *mockLLMService) Close() error { return nil }

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Each text embeds to a one-hot vector on the first matching axis keyword.
type mockEmbeddingService struct {
	axes     []string
	err      error
	batchErr error
	batches  int
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	v := make([]float32, len(m.axes)+1)
	lower := strings.ToLower(text)
	for i, a := range m.axes {
		if strings.Contains(lower, a) {
			v[i] = 1
			return v
		}
	}
	v[len(m.axes)] = 1
	return v
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batches++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return len(m.axes) + 1 }

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

// mockClusterer implements driven.Clusterer by grouping identical vectors.
type mockClusterer struct {
	err error
	k   int
}

func (m *mockClusterer) Cluster(_ context.Context, vectors [][]float32, k int) ([]int, error) {
	m.k = k
	if m.err != nil {
		return nil, m.err
	}
	ids := map[string]int{}
	out := make([]int, len(vectors))
	for i, v := range vectors {
		key := fmt.Sprint(v)
		id, ok := ids[key]
		if !ok {
			id = len(ids)
			ids[key] = id
		}
		out[i] = id
	}
	return out, nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	switch name {
	case driven.PromptSubthemes:
		return "theme=%s items:\n%s", nil
	default:
		return "items:\n%s", nil
	}
}

func (m *mockPromptStore) Reload() {}

// mockStrategy implements ThemeStrategy with fixed output.
type mockStrategy struct {
	name   string
	themes []domain.AggregatedTheme
	err    error
	calls  int
}

func (m *mockStrategy) Name() string { return m.name }

func (m *mockStrategy) Themes(_ context.Context, _ *Corpus) ([]domain.AggregatedTheme, error) {
	m.calls++
	return m.themes, m.err
}

// mockSubthemeService implements driving.SubthemeService for testing.
type mockSubthemeService struct {
	mu     sync.Mutex
	byName map[string][]domain.AggregatedSubtheme
	errFor map[string]error
	calls  []string
	opts   []domain.SubthemeOptions
}

func (m *mockSubthemeService) Subthemes(
	_ context.Context, label string, _ []domain.Visit, opts domain.SubthemeOptions,
) ([]domain.AggregatedSubtheme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, label)
	m.opts = append(m.opts, opts)
	if err := m.errFor[label]; err != nil {
		return nil, err
	}
	return m.byName[label], nil
}

// --- Fixture helpers ---

func namedThemes(n int, sources int) []domain.AggregatedTheme {
	out := make([]domain.AggregatedTheme, n)
	for i := range out {
		out[i] = domain.AggregatedTheme{
			Label:     fmt.Sprintf("theme-%d", i),
			Rationale: fmt.Sprintf("because %d", i),
			Sources:   namedSources(fmt.Sprintf("t%d", i), sources),
		}
	}
	return out
}

func namedSources(prefix string, n int) []domain.Source {
	out := make([]domain.Source, n)
	for i := range out {
		out[i] = domain.Source{
			Title: fmt.Sprintf("%s-source-%d", prefix, i),
			URL:   fmt.Sprintf("https://example.com/%s/%d", prefix, i),
		}
	}
	return out
}
