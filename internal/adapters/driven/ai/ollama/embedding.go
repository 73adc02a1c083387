package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Embedding defaults.
const (
	DefaultEmbeddingModel   = "all-minilm"
	DefaultEmbeddingTimeout = 60 * time.Second
)

// EmbeddingConfig holds configuration for the Ollama embedding service.
type EmbeddingConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// EmbeddingService generates embeddings with Ollama's /api/embed endpoint,
// which accepts a batch of inputs.
type EmbeddingService struct {
	api        apiClient
	model      string
	dimensions int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewEmbeddingService creates a new Ollama embedding service.
func NewEmbeddingService(cfg EmbeddingConfig) *EmbeddingService {
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultEmbeddingTimeout
	}
	return &EmbeddingService{
		api:        newAPIClient(cfg.BaseURL, cfg.Timeout),
		model:      cfg.Model,
		dimensions: domain.EmbeddingDimensions()[cfg.Model],
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in one request, returning vectors in input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embedResponse
	if err := s.api.post(ctx, "/api/embed", embedRequest{Model: s.model, Input: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama: got %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}
	if s.dimensions == 0 && len(resp.Embeddings[0]) > 0 {
		s.dimensions = len(resp.Embeddings[0])
	}
	return resp.Embeddings, nil
}

// Dimensions returns the embedding vector size, or 0 for an unknown model
// that has not embedded anything yet.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the server is reachable.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.ping(ctx)
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
