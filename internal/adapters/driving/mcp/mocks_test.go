package mcp

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results  []domain.SearchResult
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	report    domain.IndexReport
	err       error
	lastForce bool
}

func (m *mockIndexService) IndexRecording(_ context.Context, _ domain.Recording, _ bool) error {
	return m.err
}

func (m *mockIndexService) RemoveRecording(_ context.Context, _ string) error {
	return m.err
}

func (m *mockIndexService) Rebuild(_ context.Context, force bool) (domain.IndexReport, error) {
	m.lastForce = force
	return m.report, m.err
}

func (m *mockIndexService) Stats(_ context.Context) (domain.VectorIndexStats, int, error) {
	return domain.VectorIndexStats{}, m.report.KeywordDocuments, m.err
}

// mockRecordingService is a mock implementation of driving.RecordingService.
type mockRecordingService struct {
	recordings []domain.Recording
	recording  *domain.Recording
	err        error
}

func (m *mockRecordingService) Add(_ context.Context, rec domain.Recording) (*domain.Recording, error) {
	return &rec, m.err
}

func (m *mockRecordingService) Get(_ context.Context, _ string) (*domain.Recording, error) {
	return m.recording, m.err
}

func (m *mockRecordingService) List(_ context.Context) ([]domain.Recording, error) {
	return m.recordings, m.err
}

func (m *mockRecordingService) Remove(_ context.Context, _ string) error {
	return m.err
}
