// Package tui provides an interactive terminal user interface for browsing
// and searching the voice journal. It is a driving adapter in the hexagonal
// architecture.
package tui

import (
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Search runs journal queries. Required.
	Search driving.SearchService

	// Recordings lists, shows and deletes recordings.
	Recordings driving.RecordingService

	// Model reports the embedding model lifecycle.
	Model driving.ModelService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
