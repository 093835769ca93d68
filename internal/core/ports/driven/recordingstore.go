package driven

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// RecordingStore provides access to journal recordings.
// The retrieval core only reads; importers and the CLI write.
type RecordingStore interface {
	// GetRecording retrieves a recording by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetRecording(ctx context.Context, id string) (*domain.Recording, error)

	// ListRecordings returns every recording, newest first.
	ListRecordings(ctx context.Context) ([]domain.Recording, error)

	// SaveRecording stores or updates a recording.
	SaveRecording(ctx context.Context, recording *domain.Recording) error

	// DeleteRecording removes a recording. Deleting a missing recording is not an error.
	DeleteRecording(ctx context.Context, id string) error
}

// RefreshableStore is implemented by recording stores that serve reads
// from a cache. ForceRefresh drops cached state and reloads from the
// backing store, so writes made by other processes become visible.
type RefreshableStore interface {
	ForceRefresh(ctx context.Context) error
}
