package driving

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// IndexService keeps the keyword and vector indexes in step with recordings.
type IndexService interface {
	// IndexRecording (re)indexes one recording. Unless force is set, the
	// vector side is skipped when the recording's content hash is unchanged.
	IndexRecording(ctx context.Context, recording domain.Recording, force bool) error

	// RemoveRecording drops a recording from both indexes.
	RemoveRecording(ctx context.Context, recordingID string) error

	// Rebuild rebuilds the keyword index from the store and re-embeds stale recordings.
	Rebuild(ctx context.Context, force bool) (domain.IndexReport, error)

	// Stats returns vector index statistics and the keyword index size.
	Stats(ctx context.Context) (domain.VectorIndexStats, int, error)
}
