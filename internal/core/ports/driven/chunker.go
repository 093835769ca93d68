package driven

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// TranscriptChunker turns transcript text into embedded retrieval chunks.
type TranscriptChunker interface {
	// ChunkTranscript splits text into ordered chunks with unit-length embeddings.
	// Empty text yields no chunks.
	ChunkTranscript(ctx context.Context, text string) ([]domain.Chunk, error)
}
