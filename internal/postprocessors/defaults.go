// Package postprocessors builds the transcript processors used at index time.
package postprocessors

import (
	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/postprocessors/chunker"
)

// NewTranscriptChunker creates the semantic chunker from user settings.
// Zero or out-of-range settings fall back to the chunker defaults.
func NewTranscriptChunker(embedder driven.EmbeddingService, cfg domain.ChunkerSettings) driven.TranscriptChunker {
	var opts []chunker.Option

	if cfg.SimilarityThreshold != 0 {
		opts = append(opts, chunker.WithSimilarityThreshold(cfg.SimilarityThreshold))
	}
	if cfg.MaxChunkTokens > 0 {
		opts = append(opts, chunker.WithMaxChunkTokens(cfg.MaxChunkTokens))
	}

	return chunker.New(embedder, opts...)
}
