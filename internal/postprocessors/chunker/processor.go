// Package chunker provides a semantic transcript chunking processor.
//
// Sentences are embedded and greedily merged while they stay on topic
// (cosine similarity to the running chunk embedding) and under a token cap.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/logger"
	"github.com/custodia-labs/murmur/internal/postprocessors/sentence"
)

// Ensure Processor implements the interface.
var _ driven.TranscriptChunker = (*Processor)(nil)

// DefaultSimilarityThreshold is the cosine similarity below which a topic break is declared.
const DefaultSimilarityThreshold = 0.5

// DefaultMaxChunkTokens caps the derived token count of a merged chunk.
const DefaultMaxChunkTokens = 256

// Processor groups transcript sentences into semantically coherent chunks.
// It implements the TranscriptChunker interface.
type Processor struct {
	embedder            driven.EmbeddingService
	split               func(string) []string
	similarityThreshold float64
	maxChunkTokens      int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithSimilarityThreshold sets the topic-break threshold.
// Values outside [-1, 1] are ignored.
func WithSimilarityThreshold(threshold float64) Option {
	return func(p *Processor) {
		if threshold >= -1 && threshold <= 1 {
			p.similarityThreshold = threshold
		}
	}
}

// WithMaxChunkTokens sets the token cap for merged chunks.
func WithMaxChunkTokens(tokens int) Option {
	return func(p *Processor) {
		if tokens > 0 {
			p.maxChunkTokens = tokens
		}
	}
}

// WithSplitter replaces the sentence splitter.
func WithSplitter(split func(string) []string) Option {
	return func(p *Processor) {
		if split != nil {
			p.split = split
		}
	}
}

// New creates a new chunker processor backed by the given embedding service.
func New(embedder driven.EmbeddingService, opts ...Option) *Processor {
	p := &Processor{
		embedder:            embedder,
		split:               sentence.Split,
		similarityThreshold: DefaultSimilarityThreshold,
		maxChunkTokens:      DefaultMaxChunkTokens,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkTranscript splits text into sentences, embeds them in one batch and
// merges neighbours into chunks. Every returned embedding is unit length.
//
// A single sentence longer than the token cap is emitted on its own; the
// cap only bounds merging.
func (p *Processor) ChunkTranscript(ctx context.Context, text string) ([]domain.Chunk, error) {
	sentences := p.split(text)
	if len(sentences) == 0 {
		return nil, nil
	}

	if p.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	raw, err := p.embedder.EmbedBatch(ctx, sentences)
	if err != nil {
		return nil, fmt.Errorf("embed sentences: %w", err)
	}
	if len(raw) != len(sentences) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d sentences",
			domain.ErrInvalidEmbedding, len(raw), len(sentences))
	}

	embeddings := make([][]float32, len(raw))
	for i, e := range raw {
		if len(e) == 0 || domain.Magnitude(e) == 0 {
			return nil, fmt.Errorf("%w: sentence %d has zero magnitude", domain.ErrInvalidEmbedding, i)
		}
		if i > 0 && len(e) != len(embeddings[0]) {
			return nil, fmt.Errorf("%w: sentence %d has %d dimensions, want %d",
				domain.ErrInvalidEmbedding, i, len(e), len(embeddings[0]))
		}
		embeddings[i] = domain.Normalize(e)
	}

	var chunks []domain.Chunk
	current := newBuilder(0, sentences[0], embeddings[0])

	for i := 1; i < len(sentences); i++ {
		similarity := domain.CosineSimilarity(embeddings[i], current.representative())
		fits := current.tokensWith(sentences[i]) <= p.maxChunkTokens

		if similarity >= p.similarityThreshold && fits {
			current.add(sentences[i], embeddings[i])
			continue
		}

		logger.Debug("chunker: break before sentence %d (similarity=%.3f, fits=%t)", i, similarity, fits)
		chunks = append(chunks, current.build(i))
		current = newBuilder(i, sentences[i], embeddings[i])
	}
	chunks = append(chunks, current.build(len(sentences)))

	logger.Debug("chunker: %d sentences -> %d chunks", len(sentences), len(chunks))
	return chunks, nil
}

// builder accumulates sentences for one chunk.
type builder struct {
	start   int
	texts   []string
	runes   int
	sum     []float64
	members int
	first   []float32
}

func newBuilder(start int, text string, embedding []float32) *builder {
	b := &builder{
		start: start,
		sum:   make([]float64, len(embedding)),
		first: embedding,
	}
	b.add(text, embedding)
	return b
}

func (b *builder) add(text string, embedding []float32) {
	if len(b.texts) > 0 {
		b.runes++ // joining space
	}
	b.texts = append(b.texts, text)
	b.runes += utf8.RuneCountInString(text)
	for i, x := range embedding {
		b.sum[i] += float64(x)
	}
	b.members++
}

// tokensWith returns the derived token count of the chunk after adding text.
func (b *builder) tokensWith(text string) int {
	runes := b.runes + 1 + utf8.RuneCountInString(text)
	return (runes + domain.CharsPerToken - 1) / domain.CharsPerToken
}

// representative is the renormalised mean of member embeddings.
func (b *builder) representative() []float32 {
	mean := make([]float32, len(b.sum))
	for i, x := range b.sum {
		mean[i] = float32(x / float64(b.members))
	}
	return domain.Normalize(mean)
}

func (b *builder) build(end int) domain.Chunk {
	embedding := b.representative()
	if !domain.IsUnit(embedding) {
		// Members cancelled out; fall back to the opening sentence.
		embedding = b.first
	}
	return domain.Chunk{
		Text:          strings.Join(b.texts, " "),
		Embedding:     embedding,
		SentenceRange: &domain.SentenceRange{Start: b.start, End: end},
	}
}
