// Command murmur searches a voice journal by keyword and by meaning.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/murmur/internal/adapters/driven/ai"
	"github.com/custodia-labs/murmur/internal/adapters/driven/config/file"
	"github.com/custodia-labs/murmur/internal/adapters/driven/index/bm25"
	"github.com/custodia-labs/murmur/internal/adapters/driven/storage/cache"
	"github.com/custodia-labs/murmur/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/murmur/internal/adapters/driving/cli"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/core/services"
	"github.com/custodia-labs/murmur/internal/logger"
	"github.com/custodia-labs/murmur/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// modelCheckTimeout bounds the startup probe of the local model server.
const modelCheckTimeout = 2 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	home, err := murmurHome()
	if err != nil {
		logger.Error("%v", err)
		return err
	}

	if err := loadDotEnv(home); err != nil {
		logger.Warn("Loading .env: %v", err)
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		logger.Error("Opening config: %v", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore)
	settings := settingsService.Get()
	if settings.Embedding.APIKey == "" && settings.Embedding.Provider.RequiresAPIKey() {
		settings.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	store, err := sqlite.NewStore(filepath.Join(home, "data"))
	if err != nil {
		logger.Error("Opening database: %v", err)
		return err
	}
	defer store.Close()

	recordings := cache.NewRecordingCache(store.RecordingStore(), cache.DefaultTTL)
	vectors := store.VectorIndex()

	embeddings, err := ai.Init(&settings.Embedding)
	if err != nil {
		// Keyword search still works without embeddings.
		logger.Warn("%v", err)
		embeddings = &ai.InitResult{}
	}
	defer embeddings.Close()

	modelService := services.NewModelService(embeddings.Provisioner)
	probeModel(ctx, modelService)

	var chunker driven.TranscriptChunker
	if embeddings.EmbeddingService != nil {
		chunker = postprocessors.NewTranscriptChunker(embeddings.EmbeddingService, settings.Chunker)
	}

	keyword := bm25.New()
	if err := loadKeywordIndex(ctx, keyword, recordings); err != nil {
		logger.Error("Building keyword index: %v", err)
		return err
	}

	searchService := services.NewSearchService(
		recordings,
		keyword,
		vectors,
		embeddings.EmbeddingService,
		services.WithSearchReadiness(modelService),
		services.WithMinVectorScore(settings.Search.MinVectorScore),
	)
	indexService := services.NewIndexingService(
		recordings,
		keyword,
		vectors,
		chunker,
		services.WithIndexReadiness(modelService),
		services.WithIndexWorkers(settings.Index.Workers),
	)
	recordingService := services.NewRecordingService(recordings, indexService)

	cli.SetVersion(version)
	cli.SetEmbeddingValidator(ai.ValidateEmbeddingConfig)
	cli.SetServices(cli.Services{
		Search:     searchService,
		Index:      indexService,
		Model:      modelService,
		Settings:   settingsService,
		Recordings: recordingService,
	})

	return cli.Execute(ctx)
}

// murmurHome returns the directory holding config and data. MURMUR_HOME
// overrides the default of ~/.murmur.
func murmurHome() (string, error) {
	if dir := os.Getenv("MURMUR_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".murmur"), nil
}

// probeModel refreshes the model status so commands see whether semantic
// search is available. An unreachable model server leaves the model not ready.
func probeModel(ctx context.Context, models *services.ModelService) {
	ctx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	if _, err := models.Refresh(ctx); err != nil {
		logger.Debug("Model status unavailable: %v", err)
	}
}

// loadKeywordIndex builds the in-memory keyword index from every stored recording.
func loadKeywordIndex(ctx context.Context, keyword driven.KeywordIndex, store driven.RecordingStore) error {
	recs, err := store.ListRecordings(ctx)
	if err != nil {
		return fmt.Errorf("listing recordings: %w", err)
	}
	if err := keyword.BuildIndex(ctx, recs); err != nil {
		return err
	}
	logger.Debug("Keyword index built from %d recordings", len(recs))
	return nil
}

// loadDotEnv loads home/.env into the environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(home string) error {
	err := godotenv.Load(filepath.Join(home, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
