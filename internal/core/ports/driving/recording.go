package driving

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// RecordingService manages journal recordings and keeps the indexes in step.
type RecordingService interface {
	// Add stores a recording and indexes it. A missing ID is generated and a
	// zero CreatedAt is set to now. The stored recording is returned.
	Add(ctx context.Context, recording domain.Recording) (*domain.Recording, error)

	// Get retrieves a recording by ID.
	Get(ctx context.Context, id string) (*domain.Recording, error)

	// List returns every recording, newest first.
	List(ctx context.Context) ([]domain.Recording, error)

	// Remove deletes a recording and its index entries.
	Remove(ctx context.Context, id string) error
}
