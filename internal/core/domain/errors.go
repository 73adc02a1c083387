package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData indicates the corpus is empty or degenerates to no
	// usable vocabulary. Callers report it as an empty theme set.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrCollaboratorFailure indicates an external topic, embedding or
	// generation call failed or returned unparseable output.
	// It is recovered at the level where it occurs.
	ErrCollaboratorFailure = errors.New("collaborator failure")

	// ErrConfiguration indicates invalid run options, e.g. min > max.
	// It is fatal and surfaced before any processing begins.
	ErrConfiguration = errors.New("configuration error")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Strategies requiring an LLM are skipped.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Semantic filtering falls back to lexical relevance.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
