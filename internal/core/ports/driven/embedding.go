package driven

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, vector/semantic search is disabled.
//
// Note: This is separate from VectorIndex which stores and searches vectors.
// EmbeddingService generates vectors; VectorIndex stores them.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// The result has one embedding per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ModelProvisioner manages the download lifecycle of a local embedding model.
// Remote providers have nothing to download and do not implement it.
type ModelProvisioner interface {
	// Status reports whether the model is present locally.
	// It returns ModelReady or ModelNotDownloaded.
	Status(ctx context.Context) (domain.ModelStatus, error)

	// Download fetches the model, reporting progress snapshots as they arrive.
	// It blocks until the model is ready or the download fails.
	Download(ctx context.Context, progress func(domain.ModelStatus)) error
}

// ModelReadiness is a precondition check consulted before embeddings are used.
type ModelReadiness interface {
	// IsReady returns true when the embedding model can serve requests.
	IsReady() bool
}
