package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Retrieval Errors.

	// ErrIndexNotReady indicates the keyword index was queried before it was built.
	// Recoverable by building the index.
	ErrIndexNotReady = errors.New("index not ready")

	// ErrSearchFailed indicates every retrieval source failed for a query.
	// It wraps the individual causes and is not retried.
	ErrSearchFailed = errors.New("search failed")

	// ErrInvalidEmbedding indicates the embedding service returned an unusable vector
	// (wrong count, wrong dimension or zero magnitude).
	ErrInvalidEmbedding = errors.New("invalid embedding")

	// ErrModelNotReady indicates the embedding model has not been downloaded yet.
	ErrModelNotReady = errors.New("embedding model not ready")

	// Availability Errors.

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Vector/semantic search is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrSearchUnavailable indicates the keyword index is not configured.
	ErrSearchUnavailable = errors.New("keyword index unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	// Semantic similarity search is disabled.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)
