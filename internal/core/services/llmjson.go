package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
)

// Prompt limits keep requests inside typical context windows.
const (
	maxPromptItems     = 1000
	maxTitleRunes      = 200
	maxItemRunes       = 300
	llmTemperature     = 0.2
	labelItemsInPrompt = 50
)

type themesPayload struct {
	Themes []domain.AggregatedTheme `json:"themes"`
}

type subthemesPayload struct {
	Subthemes []domain.AggregatedSubtheme `json:"subthemes"`
}

// generateJSON renders a prompt template, asks the LLM for JSON and decodes
// the first JSON object in the reply into out. Any failure is reported as
// ErrCollaboratorFailure.
func generateJSON(
	ctx context.Context, llm driven.LLMService, prompts driven.PromptStore, name string, out any, args ...any,
) error {
	if llm == nil {
		return domain.ErrLLMUnavailable
	}
	tpl, err := prompts.Load(name)
	if err != nil {
		return fmt.Errorf("%w: prompt %q: %w", domain.ErrCollaboratorFailure, name, err)
	}
	reply, err := llm.Generate(ctx, fmt.Sprintf(tpl, args...), driven.GenerateOptions{
		Temperature: llmTemperature,
		JSON:        true,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrCollaboratorFailure, llm.ModelName(), err)
	}
	body, ok := extractJSONObject(reply)
	if !ok {
		return fmt.Errorf("%w: %s returned no JSON object", domain.ErrCollaboratorFailure, llm.ModelName())
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("%w: decode %s reply: %w", domain.ErrCollaboratorFailure, name, err)
	}
	return nil
}

// extractJSONObject strips Markdown code fences and any prose around the
// outermost {...} of s.
func extractJSONObject(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// bulletList renders items as "- item" lines, each cut to maxRunes.
func bulletList(items []string, maxRunes int) string {
	var b strings.Builder
	for i, it := range items {
		if i == maxPromptItems {
			break
		}
		b.WriteString("- ")
		b.WriteString(truncateRunes(it, maxRunes))
		b.WriteByte('\n')
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// visitItem renders a visit the way the LLM and relevance filter see it.
func visitItem(v domain.Visit) string {
	return v.Title + " — " + v.URL
}

// visitSource turns a visit into a source, falling back to the URL when the
// page has no title.
func visitSource(v domain.Visit) domain.Source {
	title := strings.TrimSpace(v.Title)
	if title == "" {
		title = v.URL
	}
	return domain.Source{Title: title, URL: v.URL}
}
