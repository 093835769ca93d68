package driven

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// KeywordIndex provides ranked keyword retrieval over recording fields.
//
// The index starts empty and must be built before it can be searched:
//
//	empty --BuildIndex--> built --Clear--> empty
//
// Writers are exclusive with searches; a search never observes a
// partially rebuilt index.
type KeywordIndex interface {
	// BuildIndex replaces the entire index with the given recordings.
	BuildIndex(ctx context.Context, recordings []domain.Recording) error

	// Upsert replaces the postings of a single recording.
	Upsert(ctx context.Context, recording domain.Recording) error

	// Remove drops a recording's postings.
	Remove(ctx context.Context, recordingID string) error

	// Search returns up to limit recordings ranked by descending score.
	// An empty query yields no results; searching an unbuilt index
	// returns domain.ErrIndexNotReady.
	Search(ctx context.Context, query string, limit int) ([]domain.KeywordSearchResult, error)

	// Clear empties the index and marks it as needing a rebuild.
	Clear()

	// IndexSize returns the number of indexed recordings.
	IndexSize() int

	// NeedsRebuild returns true until BuildIndex has been called.
	NeedsRebuild() bool
}
