package mcp

import (
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides hybrid search.
	Search driving.SearchService

	// Index rebuilds the indexes. Optional; without it the reindex tool fails.
	Index driving.IndexService

	// Recordings serves recording resources. Optional.
	Recordings driving.RecordingService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
