package driven

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// VectorIndex stores chunk embeddings keyed by source recording and
// provides similarity search over them.
//
// Each indexed recording also has a manifest entry holding the content
// hash its chunks were derived from, so callers can skip re-embedding
// unchanged recordings.
type VectorIndex interface {
	// AddChunks stores the chunks of one field of a recording.
	// Chunk i is stored under domain.ChunkID(recordingID, field, i).
	AddChunks(ctx context.Context, recordingID, field string, chunks []domain.Chunk) error

	// ReplaceChunks swaps every chunk of a recording for the given fields
	// and records contentHash in the manifest as one atomic step. A
	// concurrent Search sees either the old chunks or the new ones.
	ReplaceChunks(ctx context.Context, recordingID string, fields []domain.FieldChunks, contentHash string) error

	// RemoveChunks deletes every chunk and the manifest entry of a recording.
	RemoveChunks(ctx context.Context, recordingID string) error

	// Search returns the top limit chunks with similarity >= minScore,
	// sorted by descending score.
	Search(ctx context.Context, embedding []float32, limit int, minScore float64) ([]domain.VectorSearchResult, error)

	// IsIndexed returns true if the recording has a manifest entry.
	IsIndexed(ctx context.Context, recordingID string) (bool, error)

	// GetContentHash returns the hash recorded for a recording,
	// or domain.ErrNotFound if it is not indexed.
	GetContentHash(ctx context.Context, recordingID string) (string, error)

	// UpdateManifest records the content hash a recording was indexed from.
	UpdateManifest(ctx context.Context, recordingID, contentHash string) error

	// GetIndexedRecordingIDs lists recordings with a manifest entry.
	GetIndexedRecordingIDs(ctx context.Context) ([]string, error)

	// GetStats summarises the index contents.
	GetStats(ctx context.Context) (domain.VectorIndexStats, error)

	// Clear removes all chunks and manifest entries.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}
