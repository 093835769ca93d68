package domain

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally and manages model downloads.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// Mode is the default retrieval mode.
	Mode SearchMode

	// Limit is the default number of results.
	Limit int

	// MinVectorScore drops vector hits below this similarity.
	MinVectorScore float64
}

// ChunkerSettings holds semantic chunker configuration.
type ChunkerSettings struct {
	// SimilarityThreshold is the cosine similarity below which a topic break is declared.
	SimilarityThreshold float64

	// MaxChunkTokens caps the derived token count of a merged chunk.
	MaxChunkTokens int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond throttles embedding calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings holds indexing pipeline configuration.
type IndexSettings struct {
	// Workers bounds concurrent re-embedding during a rebuild.
	Workers int
}

// WatchSettings holds transcript inbox configuration.
type WatchSettings struct {
	// InboxDir is the directory watched for new transcript files.
	InboxDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Search    SearchSettings
	Chunker   ChunkerSettings
	Embedding EmbeddingSettings
	Index     IndexSettings
	Watch     WatchSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Embedding defaults to a local Ollama model, which must be pulled before use.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: SearchSettings{
			Mode:           SearchModeHybrid,
			Limit:          DefaultSearchLimit,
			MinVectorScore: 0.2,
		},
		Chunker: ChunkerSettings{
			SimilarityThreshold: 0.5,
			MaxChunkTokens:      256,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
		},
		Index: IndexSettings{
			Workers: 4,
		},
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
