// Package ai provides factory functions for creating embedding adapters from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/murmur/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/murmur/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/murmur/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the embedding adapters built from settings.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	// Provisioner is nil for remote providers, which have nothing to download.
	Provisioner driven.ModelProvisioner
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
}

// Init builds the embedding service and, for local providers, the model
// provisioner. Unconfigured settings yield an empty result and no error, in
// which case only keyword search is available.
func Init(settings *domain.EmbeddingSettings) (*InitResult, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'murmur settings set embedding.provider ...' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return &InitResult{}, nil
	}

	return &InitResult{
		EmbeddingService: svc,
		Provisioner:      CreateModelProvisioner(settings),
	}, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
// The settings command uses it to check credentials when they are entered.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings,
// throttled to the configured request rate.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaEmbedding(settings)
	case domain.AIProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return ratelimit.Wrap(svc, ratelimit.Config{RequestsPerSecond: settings.RequestsPerSecond}), nil
}

// CreateModelProvisioner returns the model downloader for local providers and
// nil for remote ones.
func CreateModelProvisioner(settings *domain.EmbeddingSettings) driven.ModelProvisioner {
	if settings == nil || !settings.Provider.IsLocal() {
		return nil
	}
	return ollamaembed.NewModelProvisioner(ollamaembed.Config{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}
