// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/murmur/internal/core/domain"
)

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
	Err     error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewRecordings lists every recording, newest first.
	ViewRecordings
	// ViewTranscript shows one recording's transcript.
	ViewTranscript
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewRecordings:
		return "recordings"
	case ViewTranscript:
		return "transcript"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// RecordingsLoaded carries the recording list from the service.
type RecordingsLoaded struct {
	Recordings []domain.Recording
	Err        error
}

// RecordingSelected asks for a recording's transcript to be shown.
// From is the view to return to.
type RecordingSelected struct {
	ID   string
	From ViewType
}

// RecordingLoaded carries a full recording.
type RecordingLoaded struct {
	Recording *domain.Recording
	Err       error
}

// RecordingRemoved signals a recording was deleted.
type RecordingRemoved struct {
	ID  string
	Err error
}

// ModelStatusUpdated carries the embedding model lifecycle state.
type ModelStatusUpdated struct {
	Status domain.ModelStatus
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
