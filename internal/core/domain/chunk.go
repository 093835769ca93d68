package domain

import (
	"fmt"
	"unicode/utf8"
)

// CharsPerToken is the character-to-token ratio used to approximate token counts.
const CharsPerToken = 4

// SentenceRange is the half-open range [Start, End) of sentence indices a chunk covers.
type SentenceRange struct {
	Start int
	End   int
}

// Len returns the number of sentences in the range.
func (r SentenceRange) Len() int {
	return r.End - r.Start
}

// Chunk is a retrieval-sized span of transcript text with an attached embedding.
// Chunks are derived from a recording and carry no identity of their own.
type Chunk struct {
	// Text is the chunk content (member sentences joined by a space).
	Text string

	// Embedding is the L2-normalised vector for the chunk.
	Embedding []float32

	// SentenceRange records which sentences of the transcript were included.
	// Nil for chunks that did not come from a sentence split.
	SentenceRange *SentenceRange
}

// TokenCount approximates the number of model tokens in the chunk text.
func (c Chunk) TokenCount() int {
	return EstimateTokens(c.Text)
}

// EstimateTokens approximates token count as ceil(characters / 4).
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + CharsPerToken - 1) / CharsPerToken
}

// ChunkID builds the identifier of a stored chunk.
// Chunk identity is derived entirely from its source recording.
func ChunkID(recordingID, field string, index int) string {
	return fmt.Sprintf("%s:%s:%d", recordingID, field, index)
}

// FieldChunks holds the chunks derived from one field of a recording.
type FieldChunks struct {
	Field  string
	Chunks []Chunk
}
