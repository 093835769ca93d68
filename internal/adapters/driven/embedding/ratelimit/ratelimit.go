// Package ratelimit throttles calls to an embedding service.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/murmur/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size (default: 1).
	BurstSize int
}

// EmbeddingService wraps another embedding service with a token bucket.
// Each Embed or EmbedBatch call costs one token.
type EmbeddingService struct {
	next    driven.EmbeddingService
	limiter *rate.Limiter
}

// Wrap returns next throttled to cfg. A non-positive rate returns next unchanged.
func Wrap(next driven.EmbeddingService, cfg Config) driven.EmbeddingService {
	if next == nil || cfg.RequestsPerSecond <= 0 {
		return next
	}
	return New(next, cfg)
}

// New creates a throttled embedding service.
func New(next driven.EmbeddingService, cfg Config) *EmbeddingService {
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}
	return &EmbeddingService{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
	}
}

// Embed waits for a token, then delegates.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return s.next.Embed(ctx, text)
}

// EmbedBatch waits for a token, then delegates the whole batch.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return s.next.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.next.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (s *EmbeddingService) ModelName() string {
	return s.next.ModelName()
}

// Ping is not throttled.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the wrapped service.
func (s *EmbeddingService) Close() error {
	return s.next.Close()
}
