package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
	"github.com/custodia-labs/murmur/internal/logger"
)

// Ensure ModelService implements the interfaces.
var (
	_ driving.ModelService  = (*ModelService)(nil)
	_ driven.ModelReadiness = (*ModelService)(nil)
)

// ErrDownloadInProgress is returned when a download is requested while one is running.
var ErrDownloadInProgress = errors.New("model download already in progress")

// ModelService tracks the embedding model lifecycle as a pollable state.
// Search and indexing consult it through driven.ModelReadiness.
//
// Without a provisioner (remote providers) the model is always ready.
type ModelService struct {
	provisioner driven.ModelProvisioner

	mu          sync.RWMutex
	status      domain.ModelStatus
	downloading bool
}

// NewModelService creates a model service. provisioner may be nil.
func NewModelService(provisioner driven.ModelProvisioner) *ModelService {
	phase := domain.ModelNotDownloaded
	if provisioner == nil {
		phase = domain.ModelReady
	}
	return &ModelService{
		provisioner: provisioner,
		status:      domain.ModelStatus{Phase: phase},
	}
}

// Status returns the latest known lifecycle snapshot.
func (s *ModelService) Status() domain.ModelStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// IsReady returns true when embeddings can be generated.
func (s *ModelService) IsReady() bool {
	return s.Status().IsReady()
}

func (s *ModelService) setStatus(st domain.ModelStatus) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// Refresh asks the provisioner for the current state. While a download is
// running the in-flight progress is returned unchanged.
func (s *ModelService) Refresh(ctx context.Context) (domain.ModelStatus, error) {
	if s.provisioner == nil {
		return s.Status(), nil
	}

	s.mu.RLock()
	downloading := s.downloading
	s.mu.RUnlock()
	if downloading {
		return s.Status(), nil
	}

	st, err := s.provisioner.Status(ctx)
	if err != nil {
		return s.Status(), fmt.Errorf("model status: %w", err)
	}

	s.setStatus(st)
	logger.Debug("Model status: %s", st)
	return st, nil
}

// Download fetches the model. progress, when non-nil, receives every
// status transition including the final one.
func (s *ModelService) Download(ctx context.Context, progress func(domain.ModelStatus)) error {
	report := func(st domain.ModelStatus) {
		s.setStatus(st)
		if progress != nil {
			progress(st)
		}
	}

	if s.provisioner == nil {
		report(domain.ModelStatus{Phase: domain.ModelReady, Progress: 1})
		return nil
	}

	s.mu.Lock()
	if s.downloading {
		s.mu.Unlock()
		return ErrDownloadInProgress
	}
	s.downloading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.downloading = false
		s.mu.Unlock()
	}()

	logger.Info("Downloading embedding model")
	report(domain.ModelStatus{Phase: domain.ModelDownloading})

	if err := s.provisioner.Download(ctx, report); err != nil {
		report(domain.ModelStatus{Phase: domain.ModelFailed, Detail: err.Error()})
		return fmt.Errorf("download model: %w", err)
	}

	if !s.IsReady() {
		report(domain.ModelStatus{Phase: domain.ModelReady, Progress: 1})
	}
	logger.Info("Embedding model ready")
	return nil
}
