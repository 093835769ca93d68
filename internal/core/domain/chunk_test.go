package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text     string
		expected int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"ééééé", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, EstimateTokens(tt.text), "text %q", tt.text)
	}
}

func TestChunk_TokenCount(t *testing.T) {
	c := Chunk{Text: "twelve chars"}
	assert.Equal(t, 3, c.TokenCount())
}

func TestSentenceRange_Len(t *testing.T) {
	assert.Equal(t, 3, SentenceRange{Start: 2, End: 5}.Len())
}

func TestChunkID(t *testing.T) {
	assert.Equal(t, "rec-1:transcript:3", ChunkID("rec-1", FieldTranscript, 3))
}
