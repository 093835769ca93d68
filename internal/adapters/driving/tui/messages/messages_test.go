package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewMenu, "menu"},
		{ViewSearch, "search"},
		{ViewRecordings, "recordings"},
		{ViewTranscript, "transcript"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestSearchCompleted_CarriesError(t *testing.T) {
	err := errors.New("boom")
	msg := SearchCompleted{Query: "heron", Err: err}

	assert.Equal(t, "heron", msg.Query)
	assert.ErrorIs(t, msg.Err, err)
	assert.Nil(t, msg.Results)
}

func TestRecordingSelected_RemembersOrigin(t *testing.T) {
	msg := RecordingSelected{ID: "rec-1", From: ViewRecordings}

	assert.Equal(t, "rec-1", msg.ID)
	assert.Equal(t, ViewRecordings, msg.From)
}

func TestModelStatusUpdated(t *testing.T) {
	msg := ModelStatusUpdated{Status: domain.ModelStatus{Phase: domain.ModelReady}}

	assert.True(t, msg.Status.IsReady())
}
