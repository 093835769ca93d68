package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
	"github.com/custodia-labs/murmur/internal/logger"
)

// Ensure RecordingService implements the interface.
var _ driving.RecordingService = (*RecordingService)(nil)

// RecordingService stores recordings and forwards changes to the indexer.
type RecordingService struct {
	store   driven.RecordingStore
	indexer driving.IndexService
	now     func() time.Time
}

// NewRecordingService creates a recording service. indexer may be nil, in
// which case recordings are stored but not indexed.
func NewRecordingService(store driven.RecordingStore, indexer driving.IndexService) *RecordingService {
	return &RecordingService{
		store:   store,
		indexer: indexer,
		now:     time.Now,
	}
}

// Add stores a recording and indexes it.
//
// A recording whose embeddings cannot be produced yet (model not downloaded)
// is still stored and keyword-indexed; the next rebuild embeds it.
func (s *RecordingService) Add(ctx context.Context, rec domain.Recording) (*domain.Recording, error) {
	rec.Title = strings.TrimSpace(rec.Title)
	if strings.TrimSpace(rec.Transcript) == "" {
		return nil, fmt.Errorf("%w: recording has no transcript", domain.ErrInvalidInput)
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}

	if err := s.store.SaveRecording(ctx, &rec); err != nil {
		return nil, fmt.Errorf("save recording: %w", err)
	}

	if s.indexer != nil {
		err := s.indexer.IndexRecording(ctx, rec, false)
		switch {
		case errors.Is(err, domain.ErrModelNotReady):
			logger.Warn("Recording %s stored without embeddings: %v", rec.ID, err)
		case err != nil:
			return &rec, fmt.Errorf("index recording: %w", err)
		}
	}

	return &rec, nil
}

// Get retrieves a recording by ID.
func (s *RecordingService) Get(ctx context.Context, id string) (*domain.Recording, error) {
	return s.store.GetRecording(ctx, id)
}

// List returns every recording, newest first.
func (s *RecordingService) List(ctx context.Context) ([]domain.Recording, error) {
	return s.store.ListRecordings(ctx)
}

// Remove deletes a recording and its index entries.
func (s *RecordingService) Remove(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: recording ID is required", domain.ErrInvalidInput)
	}

	if err := s.store.DeleteRecording(ctx, id); err != nil {
		return fmt.Errorf("delete recording: %w", err)
	}
	if s.indexer != nil {
		if err := s.indexer.RemoveRecording(ctx, id); err != nil {
			return fmt.Errorf("remove from index: %w", err)
		}
	}
	return nil
}
