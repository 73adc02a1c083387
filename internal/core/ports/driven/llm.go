package driven

import "context"

// LLMService answers prompts for persona extraction, title theming, subtheme
// grouping and cluster labelling. It is optional: when nil those strategies
// are skipped and the cascade falls through to offline tiers.
type LLMService interface {
	// Generate answers a single prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat answers a message history. A leading "system" message sets the
	// instructions.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	ModelName() string

	// Ping makes a cheap request to confirm the provider is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string

	// JSON asks the provider for a JSON-only response when it supports it.
	JSON bool
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// JSON asks the provider for a JSON-only response when it supports it.
	JSON bool
}
