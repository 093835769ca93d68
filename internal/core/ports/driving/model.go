package driving

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// ModelService exposes the embedding model lifecycle as a pollable state machine.
type ModelService interface {
	// Status returns the latest known lifecycle snapshot without blocking.
	Status() domain.ModelStatus

	// Refresh asks the provider for the current state and returns it.
	Refresh(ctx context.Context) (domain.ModelStatus, error)

	// Download fetches the model. progress may be nil.
	Download(ctx context.Context, progress func(domain.ModelStatus)) error

	// IsReady returns true when embeddings can be generated.
	IsReady() bool
}
