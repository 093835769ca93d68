package services

import (
	"fmt"
	"strconv"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySearchMode      = "search.mode"
	keySearchLimit     = "search.limit"
	keyMinVectorScore  = "search.min_vector_score"
	keyChunkThreshold  = "chunker.similarity_threshold"
	keyChunkMaxTokens  = "chunker.max_chunk_tokens"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedRatePerSec = "embedding.requests_per_second"
	keyIndexWorkers    = "index.workers"
	keyWatchInboxDir   = "watch.inbox_dir"
)

const (
	defaultOllamaURL = "http://localhost:11434"
	maxSearchLimit   = 1000
)

// settingKeys lists the recognised keys in display order.
var settingKeys = []string{
	keySearchMode,
	keySearchLimit,
	keyMinVectorScore,
	keyChunkThreshold,
	keyChunkMaxTokens,
	keyEmbedProvider,
	keyEmbedModel,
	keyEmbedBaseURL,
	keyEmbedAPIKey,
	keyEmbedRatePerSec,
	keyIndexWorkers,
	keyWatchInboxDir,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Missing or invalid values
// fall back to defaults.
func (s *SettingsService) Get() domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(defaults.Embedding.Provider)
	model := s.getString(keyEmbedModel, "")
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}
	baseURL := s.configStore.GetString(keyEmbedBaseURL)
	if baseURL == "" && provider.IsLocal() {
		baseURL = defaultOllamaURL
	}

	return domain.AppSettings{
		Search: domain.SearchSettings{
			Mode:           s.getSearchMode(defaults.Search.Mode),
			Limit:          s.getInt(keySearchLimit, defaults.Search.Limit),
			MinVectorScore: s.getFloat(keyMinVectorScore, defaults.Search.MinVectorScore),
		},
		Chunker: domain.ChunkerSettings{
			SimilarityThreshold: s.getFloat(keyChunkThreshold, defaults.Chunker.SimilarityThreshold),
			MaxChunkTokens:      s.getInt(keyChunkMaxTokens, defaults.Chunker.MaxChunkTokens),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          provider,
			Model:             model,
			BaseURL:           baseURL,
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.getFloat(keyEmbedRatePerSec, defaults.Embedding.RequestsPerSecond),
		},
		Index: domain.IndexSettings{
			Workers: s.getInt(keyIndexWorkers, defaults.Index.Workers),
		},
		Watch: domain.WatchSettings{
			InboxDir: s.configStore.GetString(keyWatchInboxDir),
		},
	}
}

// Set validates and persists a single setting given as text.
func (s *SettingsService) Set(key, value string) error {
	parsed, err := parseSetting(key, value)
	if err != nil {
		return err
	}
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the recognised setting keys in display order.
func (s *SettingsService) Keys() []string {
	return append([]string(nil), settingKeys...)
}

// Path returns the settings file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// parseSetting converts and validates a textual value for key.
func parseSetting(key, value string) (any, error) {
	invalid := func(reason string) error {
		return fmt.Errorf("%w: %s: %s", domain.ErrInvalidInput, key, reason)
	}

	switch key {
	case keySearchMode:
		if !domain.SearchMode(value).IsValid() {
			return nil, invalid("must be hybrid, keyword or semantic")
		}
		return value, nil

	case keyEmbedProvider:
		if !domain.AIProvider(value).IsValid() {
			return nil, invalid("must be ollama or openai")
		}
		return value, nil

	case keySearchLimit:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > maxSearchLimit {
			return nil, invalid(fmt.Sprintf("must be an integer between 1 and %d", maxSearchLimit))
		}
		return n, nil

	case keyChunkMaxTokens, keyIndexWorkers:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return nil, invalid("must be a positive integer")
		}
		return n, nil

	case keyMinVectorScore, keyChunkThreshold:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < -1 || f > 1 {
			return nil, invalid("must be a number between -1 and 1")
		}
		return f, nil

	case keyEmbedRatePerSec:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return nil, invalid("must be a non-negative number")
		}
		return f, nil

	case keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey, keyWatchInboxDir:
		return value, nil

	default:
		return nil, fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getSearchMode(defaultVal domain.SearchMode) domain.SearchMode {
	mode := domain.SearchMode(s.configStore.GetString(keySearchMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(keyEmbedProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
