package driving

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search performs hybrid search across all indexed recordings.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
