package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

const personaReply = "```json\n" + `{"themes":[
  {"label":"Deep Learning","rationale":"Reads papers.","sources":[{"title":"Attention","url":"https://arxiv.org/abs/1706.03762"}]},
  {"label":"  ","rationale":"unlabelled"},
  {"label":"Moral Philosophy","rationale":"Stoics.","sources":[],"subthemes":[{"label":"ignored"}]}
]}` + "\n```"

func corpusOf(visits []domain.Visit) *Corpus {
	return NewCorpus(visits, domain.DefaultExportOptions())
}

func TestNewCorpus_DedupesNewestFirst(t *testing.T) {
	c := corpusOf([]domain.Visit{
		{URL: "https://a.com/x", Title: "old", Time: at(1)},
		{URL: "https://a.com/x/", Title: "new", Time: at(2)},
		{URL: "https://b.com/", Title: "b", Time: at(3)},
	})

	assert.Len(t, c.Visits, 3)
	require.Len(t, c.Deduped, 2)
	assert.Equal(t, "b", c.Deduped[0].Title)
	assert.Equal(t, "new", c.Deduped[1].Title)
}

func TestTopicModelStrategy_Themes(t *testing.T) {
	analyzer := NewAnalyzeService(nil, keywordTopicModel("pytorch", "stoicism", "recipes"))
	strategy := NewTopicModelStrategy(analyzer)

	themes, err := strategy.Themes(context.Background(), corpusOf(analysisVisits()))

	require.NoError(t, err)
	require.Len(t, themes, 2)
	assert.Equal(t, "topic-model", strategy.Name())
	assert.Equal(t, "pytorch", themes[0].Label)
	assert.Contains(t, themes[0].Rationale, "60 visits")
	assert.Contains(t, themes[0].Rationale, "math_ai")
	assert.Len(t, themes[0].Sources, domain.MaxRepresentatives)
	assert.True(t, strings.HasPrefix(themes[0].Sources[0].URL, "https://pytorch"))
	assert.False(t, themes[0].Synthetic)
}

func TestTopicModelStrategy_PropagatesFailure(t *testing.T) {
	analyzer := NewAnalyzeService(nil, &mockTopicModel{err: errors.New("boom")})

	_, err := NewTopicModelStrategy(analyzer).Themes(context.Background(), corpusOf(analysisVisits()))

	assert.ErrorIs(t, err, domain.ErrCollaboratorFailure)
}

func TestLLMPersonaStrategy_Themes(t *testing.T) {
	llm := &mockLLMService{response: personaReply}
	strategy := NewLLMPersonaStrategy(llm, &mockPromptStore{})
	visits := []domain.Visit{
		{URL: "https://arxiv.org/abs/1706.03762", Title: "Attention Is All You Need", Time: at(1)},
		{URL: "https://mail.google.com/mail/u/0", Title: "Inbox", Time: at(2)},
	}

	themes, err := strategy.Themes(context.Background(), corpusOf(visits))

	require.NoError(t, err)
	require.Len(t, themes, 2)
	assert.Equal(t, "Deep Learning", themes[0].Label)
	assert.Equal(t, []domain.Source{{Title: "Attention", URL: "https://arxiv.org/abs/1706.03762"}}, themes[0].Sources)
	assert.Equal(t, "Moral Philosophy", themes[1].Label)
	assert.Nil(t, themes[1].Subthemes)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "- Attention Is All You Need — https://arxiv.org/abs/1706.03762")
	assert.NotContains(t, llm.prompts[0], "mail.google.com")
	assert.True(t, llm.opts[0].JSON)
}

func TestLLMPersonaStrategy_NoLLM(t *testing.T) {
	_, err := NewLLMPersonaStrategy(nil, &mockPromptStore{}).Themes(context.Background(), corpusOf(analysisVisits()))

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestLLMPersonaStrategy_UnparseableReply(t *testing.T) {
	llm := &mockLLMService{response: "Here are your themes: deep learning, philosophy"}

	_, err := NewLLMPersonaStrategy(llm, &mockPromptStore{}).Themes(context.Background(), corpusOf(analysisVisits()))

	assert.ErrorIs(t, err, domain.ErrCollaboratorFailure)
}

func TestLLMPersonaStrategy_LLMError(t *testing.T) {
	llm := &mockLLMService{err: errors.New("rate limited")}

	_, err := NewLLMPersonaStrategy(llm, &mockPromptStore{}).Themes(context.Background(), corpusOf(analysisVisits()))

	assert.ErrorIs(t, err, domain.ErrCollaboratorFailure)
	assert.ErrorContains(t, err, "rate limited")
}

func TestLLMPersonaStrategy_PromptStoreError(t *testing.T) {
	llm := &mockLLMService{response: personaReply}

	_, err := NewLLMPersonaStrategy(llm, &mockPromptStore{err: errors.New("missing")}).Themes(context.Background(), corpusOf(analysisVisits()))

	assert.ErrorIs(t, err, domain.ErrCollaboratorFailure)
	assert.Empty(t, llm.prompts)
}

func TestLLMTitlesStrategy_UsesDistinctTitles(t *testing.T) {
	llm := &mockLLMService{response: `{"themes":[{"label":"Indie Games","rationale":"r","sources":[]}]}`}
	strategy := NewLLMTitlesStrategy(llm, &mockPromptStore{prompts: map[string]string{"titles": "TITLES\n%s"}})
	visits := []domain.Visit{
		{URL: "https://a.com/1", Title: "Celeste review", Time: at(1)},
		{URL: "https://b.com/2", Title: "Celeste review", Time: at(2)},
		{URL: "https://c.com/3", Title: "", Time: at(3)},
		{URL: "https://d.com/4", Title: "Hades speedrun", Time: at(4)},
	}

	themes, err := strategy.Themes(context.Background(), corpusOf(visits))

	require.NoError(t, err)
	require.Len(t, themes, 1)
	assert.Equal(t, "Indie Games", themes[0].Label)
	assert.Equal(t, "llm-titles", strategy.Name())
	require.Len(t, llm.prompts, 1)
	assert.Equal(t, "TITLES\n- Hades speedrun\n- Celeste review\n", llm.prompts[0])
}

func TestLLMTitlesStrategy_NoTitles(t *testing.T) {
	llm := &mockLLMService{}

	themes, err := NewLLMTitlesStrategy(llm, &mockPromptStore{}).Themes(context.Background(), corpusOf([]domain.Visit{{URL: "https://a.com/", Time: at(1)}}))

	require.NoError(t, err)
	assert.Empty(t, themes)
	assert.Empty(t, llm.prompts)
}

func TestHeuristicStrategy_Themes(t *testing.T) {
	visits := []domain.Visit{
		{URL: "https://a.com/1", Title: "Rust async runtime", Time: at(1)},
		{URL: "https://b.com/2", Title: "Rust borrow checker", Time: at(2)},
		{URL: "https://c.com/3", Title: "Async Rust patterns", Time: at(3)},
	}

	themes, err := HeuristicStrategy{}.Themes(context.Background(), corpusOf(visits))

	require.NoError(t, err)
	require.Len(t, themes, 1)
	assert.Equal(t, "rust async borrow", themes[0].Label)
	assert.True(t, themes[0].Synthetic)
	assert.Empty(t, themes[0].Sources)
	assert.Empty(t, themes[0].Subthemes)
	assert.Contains(t, themes[0].Rationale, "rust, async")
}

func TestHeuristicStrategy_EmptyCorpus(t *testing.T) {
	themes, err := HeuristicStrategy{}.Themes(context.Background(), corpusOf(nil))

	require.NoError(t, err)
	assert.Empty(t, themes)
}

func TestFrequentTerms(t *testing.T) {
	visits := []domain.Visit{
		{Title: "zebra apple"},
		{Title: "apple mango"},
		{Title: "the apple"},
	}

	assert.Equal(t, []string{"apple", "mango"}, FrequentTerms(visits, 2))
	assert.Empty(t, FrequentTerms(nil, 3))
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`, ok: true},
		{name: "fenced", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`, ok: true},
		{name: "bare fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`, ok: true},
		{name: "prose around", in: `Sure! {"a":{"b":2}} Hope this helps.`, want: `{"a":{"b":2}}`, ok: true},
		{name: "no object", in: "no json here", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONObject(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestBulletList_TruncatesRunes(t *testing.T) {
	got := bulletList([]string{"héllo wörld", "ok"}, 5)

	assert.Equal(t, "- héllo\n- ok\n", got)
}
