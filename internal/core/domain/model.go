package domain

import "fmt"

// ModelPhase is a state of the embedding model lifecycle.
//
//	NotDownloaded -> Downloading -> Ready
//	      ^              |
//	      +---- Failed <-+
type ModelPhase string

// Model lifecycle phases.
const (
	ModelNotDownloaded ModelPhase = "not_downloaded"
	ModelDownloading   ModelPhase = "downloading"
	ModelReady         ModelPhase = "ready"
	ModelFailed        ModelPhase = "failed"
)

// ModelStatus is a pollable snapshot of the embedding model lifecycle.
type ModelStatus struct {
	// Phase is the current lifecycle phase.
	Phase ModelPhase

	// Progress is the download fraction in [0, 1]; meaningful while downloading.
	Progress float64

	// Detail is a provider-specific status line (e.g. "pulling manifest").
	Detail string
}

// IsReady returns true once the model can serve embeddings.
func (s ModelStatus) IsReady() bool {
	return s.Phase == ModelReady
}

// String renders the status for display.
func (s ModelStatus) String() string {
	switch s.Phase {
	case ModelDownloading:
		return fmt.Sprintf("downloading (%.0f%%)", s.Progress*100)
	case ModelFailed:
		if s.Detail != "" {
			return "failed: " + s.Detail
		}
		return "failed"
	default:
		return string(s.Phase)
	}
}
