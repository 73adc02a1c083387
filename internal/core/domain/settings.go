package domain

import (
	"fmt"
	"strings"
)

// AIProvider identifies a backend for LLM calls or embeddings.
type AIProvider string

// Supported AI providers.
const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
)

// providerInfo describes what a provider offers and needs.
type providerInfo struct {
	description  string
	local        bool
	embeddings   bool
	defaultLLM   string
	defaultEmbed string
}

// providers is ordered by preference: local first, then cloud.
var providers = []struct {
	id   AIProvider
	info providerInfo
}{
	{AIProviderOllama, providerInfo{"Ollama (local)", true, true, "llama3.2", "all-minilm"}},
	{AIProviderOpenAI, providerInfo{"OpenAI (cloud)", false, true, "gpt-4o-mini", "text-embedding-3-small"}},
	{AIProviderAnthropic, providerInfo{"Anthropic (cloud)", false, false, "claude-3-5-haiku-latest", ""}},
}

func (p AIProvider) info() (providerInfo, bool) {
	for _, e := range providers {
		if e.id == p {
			return e.info, true
		}
	}
	return providerInfo{}, false
}

// ParseAIProvider resolves a provider name case-insensitively.
func ParseAIProvider(name string) (AIProvider, error) {
	p := AIProvider(strings.ToLower(strings.TrimSpace(name)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: unknown AI provider %q", ErrConfiguration, name)
	}
	return p, nil
}

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	_, ok := p.info()
	return ok
}

// RequiresAPIKey returns true for cloud providers.
func (p AIProvider) RequiresAPIKey() bool {
	info, ok := p.info()
	return ok && !info.local
}

// IsLocal returns true if the provider runs on this machine.
func (p AIProvider) IsLocal() bool {
	info, _ := p.info()
	return info.local
}

// SupportsEmbeddings returns true if the provider has an embedding endpoint.
func (p AIProvider) SupportsEmbeddings() bool {
	info, _ := p.info()
	return info.embeddings
}

// String returns the provider name.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable name.
func (p AIProvider) Description() string {
	if info, ok := p.info(); ok {
		return info.description
	}
	return "Unknown"
}

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	Provider AIProvider

	// Model is passed through to the provider unchanged.
	Model string

	// BaseURL is the endpoint for local providers.
	BaseURL string

	APIKey string
}

// IsConfigured reports whether embeddings can be requested.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Provider.SupportsEmbeddings() && (!e.Provider.RequiresAPIKey() || e.APIKey != "")
}

// LLMSettings configures the LLM provider.
type LLMSettings struct {
	Provider AIProvider

	// Model is passed through to the provider unchanged.
	Model string

	// BaseURL is the endpoint for local providers.
	BaseURL string

	APIKey string
}

// IsConfigured reports whether LLM calls can be made.
func (l LLMSettings) IsConfigured() bool {
	return l.Provider.IsValid() && (!l.Provider.RequiresAPIKey() || l.APIKey != "")
}

// HistorySettings holds defaults for the history source.
type HistorySettings struct {
	// Path is the browser history database. Empty means auto-detect.
	Path string

	// IncludeArchived also reads the archived history database.
	IncludeArchived bool
}

// RuntimeSettings holds collaborator call limits.
type RuntimeSettings struct {
	// Workers bounds concurrent per-theme expansion.
	Workers int

	// RequestsPerSecond limits calls to AI providers. Zero disables limiting.
	RequestsPerSecond float64
}

// AppSettings is the persisted application configuration.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	History   HistorySettings
	Runtime   RuntimeSettings
}

// DefaultAppSettings returns the settings used before anything is saved.
// No AI provider is configured; the topic model and heuristic tiers need none.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		History: HistorySettings{IncludeArchived: true},
		Runtime: RuntimeSettings{Workers: DefaultWorkers, RequestsPerSecond: 2},
	}
}

// AllEmbeddingProviders returns providers with an embedding endpoint.
func AllEmbeddingProviders() []AIProvider {
	var out []AIProvider
	for _, e := range providers {
		if e.info.embeddings {
			out = append(out, e.id)
		}
	}
	return out
}

// AllLLMProviders returns every provider, local first.
func AllLLMProviders() []AIProvider {
	out := make([]AIProvider, len(providers))
	for i, e := range providers {
		out[i] = e.id
	}
	return out
}

// DefaultEmbeddingModels returns the default embedding model per provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	out := make(map[AIProvider]string)
	for _, p := range AllEmbeddingProviders() {
		info, _ := p.info()
		out[p] = info.defaultEmbed
	}
	return out
}

// DefaultLLMModels returns the default chat model per provider.
func DefaultLLMModels() map[AIProvider]string {
	out := make(map[AIProvider]string)
	for _, e := range providers {
		out[e.id] = e.info.defaultLLM
	}
	return out
}

// EmbeddingDimensions returns vector sizes for well-known embedding models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
