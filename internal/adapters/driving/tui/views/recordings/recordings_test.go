package recordings

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/murmur/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/murmur/internal/core/domain"
)

type mockRecordingService struct {
	recordings []domain.Recording
	listErr    error
	removeErr  error
	removed    []string
}

func (m *mockRecordingService) Add(_ context.Context, rec domain.Recording) (*domain.Recording, error) {
	return &rec, nil
}

func (m *mockRecordingService) Get(context.Context, string) (*domain.Recording, error) {
	return nil, domain.ErrNotFound
}

func (m *mockRecordingService) List(context.Context) ([]domain.Recording, error) {
	return m.recordings, m.listErr
}

func (m *mockRecordingService) Remove(_ context.Context, id string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	m.removed = append(m.removed, id)
	kept := m.recordings[:0]
	for _, r := range m.recordings {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	m.recordings = kept
	return nil
}

func sampleRecordings() []domain.Recording {
	at := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	return []domain.Recording{
		{ID: "c", Title: "Evening", CreatedAt: at.Add(12 * time.Hour)},
		{ID: "b", Title: "", CreatedAt: at.Add(4 * time.Hour)},
		{ID: "a", Title: "Morning", CreatedAt: at},
	}
}

func loadedView(t *testing.T, svc *mockRecordingService) *View {
	t.Helper()
	v := NewView(nil, svc)
	v.SetDimensions(80, 24)
	cmd := v.Init()
	require.NotNil(t, cmd)
	v.Update(cmd())
	return v
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_LoadsRecordings(t *testing.T) {
	v := loadedView(t, &mockRecordingService{recordings: sampleRecordings()})

	require.Len(t, v.Recordings(), 3)
	view := v.View()
	assert.Contains(t, view, "Recordings (3)")
	assert.Contains(t, view, "> 2026-06-01 20:00  Evening")
	assert.Contains(t, view, "(Untitled)")
}

func TestView_Empty(t *testing.T) {
	v := loadedView(t, &mockRecordingService{})

	assert.Contains(t, v.View(), "No recordings yet")
	assert.Nil(t, v.SelectedRecording())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestView_LoadError(t *testing.T) {
	v := loadedView(t, &mockRecordingService{listErr: errors.New("db locked")})

	assert.Error(t, v.Err())
	assert.Contains(t, v.View(), "Error: db locked")
}

func TestView_NoService(t *testing.T) {
	v := NewView(nil, nil)

	v.Update(v.Init()())

	assert.ErrorIs(t, v.Err(), ErrNoRecordingService)
}

func TestView_NavigateAndOpen(t *testing.T) {
	v := loadedView(t, &mockRecordingService{recordings: sampleRecordings()})

	v.Update(key("j"))
	v.Update(key("j"))
	v.Update(key("j"))
	require.NotNil(t, v.SelectedRecording())
	assert.Equal(t, "a", v.SelectedRecording().ID)

	v.Update(key("k"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	selected, ok := cmd().(messages.RecordingSelected)
	require.True(t, ok)
	assert.Equal(t, "b", selected.ID)
	assert.Equal(t, messages.ViewRecordings, selected.From)
}

func TestView_DeleteWithConfirmation(t *testing.T) {
	svc := &mockRecordingService{recordings: sampleRecordings()}
	v := loadedView(t, svc)

	v.Update(key("d"))
	assert.Contains(t, v.View(), `Delete "Evening"? [y/N]`)

	_, cmd := v.Update(key("y"))
	require.NotNil(t, cmd)
	removed := cmd()
	_, reload := v.Update(removed)
	require.NotNil(t, reload)
	v.Update(reload())

	assert.Equal(t, []string{"c"}, svc.removed)
	assert.Len(t, v.Recordings(), 2)
}

func TestView_DeleteCancelled(t *testing.T) {
	svc := &mockRecordingService{recordings: sampleRecordings()}
	v := loadedView(t, svc)

	v.Update(key("d"))
	_, cmd := v.Update(key("n"))

	assert.Nil(t, cmd)
	assert.Empty(t, svc.removed)
	assert.NotContains(t, v.View(), "[y/N]")
}

func TestView_DeleteError(t *testing.T) {
	svc := &mockRecordingService{recordings: sampleRecordings(), removeErr: errors.New("read-only")}
	v := loadedView(t, svc)

	v.Update(key("d"))
	_, cmd := v.Update(key("y"))
	v.Update(cmd())

	assert.EqualError(t, v.Err(), "read-only")
}

func TestView_SelectionClampedAfterReload(t *testing.T) {
	svc := &mockRecordingService{recordings: sampleRecordings()}
	v := loadedView(t, svc)
	v.Update(key("j"))
	v.Update(key("j"))

	v.Update(messages.RecordingsLoaded{Recordings: sampleRecordings()[:1]})

	require.NotNil(t, v.SelectedRecording())
	assert.Equal(t, "c", v.SelectedRecording().ID)
}

func TestView_EscAndReload(t *testing.T) {
	v := loadedView(t, &mockRecordingService{recordings: sampleRecordings()})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())

	_, cmd = v.Update(key("r"))
	require.NotNil(t, cmd)
	assert.IsType(t, messages.RecordingsLoaded{}, cmd())
}
