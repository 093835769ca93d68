package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
)

// Ensure RecordingStore implements the interface.
var _ driven.RecordingStore = (*RecordingStore)(nil)

// RecordingStore is an in-memory implementation of driven.RecordingStore.
type RecordingStore struct {
	mu         sync.RWMutex
	recordings map[string]domain.Recording
}

// NewRecordingStore creates a store holding the given recordings.
func NewRecordingStore(recordings ...domain.Recording) *RecordingStore {
	s := &RecordingStore{recordings: make(map[string]domain.Recording)}
	for _, r := range recordings {
		s.recordings[r.ID] = clone(r)
	}
	return s
}

// GetRecording retrieves a recording by ID.
func (s *RecordingStore) GetRecording(_ context.Context, id string) (*domain.Recording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recordings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	rec = clone(rec)
	return &rec, nil
}

// ListRecordings returns every recording, newest first.
func (s *RecordingStore) ListRecordings(_ context.Context) ([]domain.Recording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Recording, 0, len(s.recordings))
	for _, rec := range s.recordings {
		result = append(result, clone(rec))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// SaveRecording stores or updates a recording.
func (s *RecordingStore) SaveRecording(_ context.Context, rec *domain.Recording) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("%w: recording ID is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordings[rec.ID] = clone(*rec)
	return nil
}

// DeleteRecording removes a recording.
func (s *RecordingStore) DeleteRecording(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recordings, id)
	return nil
}

func clone(r domain.Recording) domain.Recording {
	r.Tags = slices.Clone(r.Tags)
	return r
}
