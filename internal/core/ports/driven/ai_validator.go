package driven

import "github.com/custodia-labs/themescope/internal/core/domain"

// AIConfigValidator checks provider settings by contacting the provider.
// An unset provider is valid.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
}
