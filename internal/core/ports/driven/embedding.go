package driven

import "context"

// EmbeddingService turns text into vectors for relevance ranking and
// clustering. It is optional: without it relevance is lexical and subthemes
// come from the topic model.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector size, or 0 until known.
	Dimensions() int

	ModelName() string

	// Ping makes a cheap request to confirm the provider is reachable.
	Ping(ctx context.Context) error

	Close() error
}
