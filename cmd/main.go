package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docs-rag/internal/chromemdb"
	"docs-rag/internal/config"
	"docs-rag/internal/db"
	"docs-rag/internal/embedding"
	"docs-rag/internal/helper"
	"docs-rag/internal/index"
	"docs-rag/internal/llmservice"
	"docs-rag/internal/loader"
	"docs-rag/internal/rag"
	"docs-rag/internal/splitter"
	"docs-rag/internal/vectorstore"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	logFile, err := openLogFile(cfg.LogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening log file")
	}
	defer logFile.Close()

	runID, err := helper.GenerateUUID()
	if err != nil {
		log.Fatal().Err(err).Msg("Error generating run id")
	}
	logger := zerolog.New(logFile).With().Timestamp().Str("run_id", runID).Logger()
	logger.Info().Interface("config", cfg).Msg("starting")

	embedder, err := embedding.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	store, closeStore := newStore(cfg, logger)
	defer closeStore()

	manager := index.NewManager(store, embedder, cfg.EmbeddingModel, logger)

	ctx := context.Background()
	if cfg.DatabaseCreation {
		docs, err := loader.New(cfg.ExtraFormats, logger).Load(cfg.DocsDirectory)
		if err != nil {
			log.Fatal().Err(err).Msg("Error loading documents")
		}
		sections := splitter.SplitAll(docs)
		logger.Info().Int("documents", len(docs)).Int("sections", len(sections)).Msg("corpus chunked")
		if err := manager.Build(ctx, sections); err != nil {
			log.Fatal().Err(err).Msg("Error building index")
		}
	} else {
		if err := manager.Load(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error loading index")
		}
	}

	var generator llmservice.Generator
	if cfg.RAGLLM {
		generator, err = llmservice.NewOllamaGenerator(cfg.OllamaURL, cfg.LLMModel)
		if err != nil {
			log.Fatal().Err(err).Msg("Error initializing LLM")
		}
	}

	engine := rag.NewRAG(manager, generator, cfg.RAGLLM, logger)
	session := rag.NewSession(engine, os.Stdin, os.Stdout, logger)
	session.Run(ctx)
}

// openLogFile truncates the log at run start so each run's log stands alone.
func openLogFile(path string) (*os.File, error) {
	if err := helper.CreateFolder(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}

func newStore(cfg *config.Config, logger zerolog.Logger) (vectorstore.Store, func()) {
	switch cfg.Store {
	case config.StorePostgres:
		s := db.NewStore(&cfg.Postgres, logger)
		return s, func() { _ = s.Close() }
	default:
		return chromemdb.NewStore(cfg.DatabaseDirectory, logger), func() {}
	}
}
