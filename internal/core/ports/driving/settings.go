package driving

import "github.com/custodia-labs/themescope/internal/core/domain"

// SettingsService reads and updates the persisted configuration.
type SettingsService interface {
	// Get returns stored settings merged over the defaults.
	Get() (*domain.AppSettings, error)

	// Save writes every field. Empty API keys leave stored keys untouched.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetHistoryPath sets the default browser history database.
	SetHistoryPath(path string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
