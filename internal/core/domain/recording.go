package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Indexed field names. They appear in MatchedFields and VectorSearchResult.Field.
const (
	FieldTitle      = "title"
	FieldTranscript = "transcript"
	FieldTags       = "tags"
	FieldContext    = "context"
	FieldSummary    = "summary"
)

// Recording is a single voice-journal entry.
// Its lifecycle is owned by the recording store; the retrieval core only
// reads recordings to index them and to resolve search hits.
type Recording struct {
	// ID is the unique identifier for the recording.
	ID string

	// Title is the human-readable title.
	Title string

	// Transcript is the speech-to-text output, usually long and loosely punctuated.
	Transcript string

	// Context is free text the user attached to the recording.
	Context string

	// Summary is a free-text summary of the recording.
	Summary string

	// Tags are user-assigned labels.
	Tags []string

	// CreatedAt is when the recording was made.
	CreatedAt time.Time
}

// ContentHash returns a stable hash of the text the vector index derives
// chunks from. A changed hash means the recording's chunks are stale.
func (r Recording) ContentHash() string {
	h := sha256.New()
	h.Write([]byte(r.Transcript))
	h.Write([]byte{0})
	h.Write([]byte(r.Context))
	return hex.EncodeToString(h.Sum(nil))
}

// EmbeddableFields returns the field names and texts that are chunked and
// embedded, in a fixed order. Empty fields are omitted.
func (r Recording) EmbeddableFields() []FieldText {
	var fields []FieldText
	if r.Transcript != "" {
		fields = append(fields, FieldText{Field: FieldTranscript, Text: r.Transcript})
	}
	if r.Context != "" {
		fields = append(fields, FieldText{Field: FieldContext, Text: r.Context})
	}
	return fields
}

// FieldText pairs a field name with its text.
type FieldText struct {
	Field string
	Text  string
}
