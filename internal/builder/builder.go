package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mvahidi/copilot-backend/internal/api"
	chatapi "github.com/mvahidi/copilot-backend/internal/api/chat"
	documentapi "github.com/mvahidi/copilot-backend/internal/api/document"
	"github.com/mvahidi/copilot-backend/internal/config"
	"github.com/mvahidi/copilot-backend/internal/integration/completion"
	"github.com/mvahidi/copilot-backend/internal/integration/embedding"
	"github.com/mvahidi/copilot-backend/internal/pkg/validator"
	"github.com/mvahidi/copilot-backend/internal/repository"
	"github.com/mvahidi/copilot-backend/internal/usecase/chat"
	"github.com/mvahidi/copilot-backend/internal/usecase/ingest"
	"github.com/mvahidi/copilot-backend/internal/watcher"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("storage_backend", cfg.StorageBackend),
	)

	// Setup document store
	store, closeStore, err := setupStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Document store initialized")

	// Initialize external service connectors (with mock support)
	var embedder embedding.Service
	var completer completion.Service

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		embedder = embedding.NewMockConnector(cfg.RetrievalCfg.EmbeddingDim, logger)
		completer = completion.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		embedder = embedding.NewConnector(cfg.EmbeddingConnectorCfg, logger)
		completer = completion.NewConnector(cfg.CompletionConnectorCfg, cfg.GenerationCfg, logger)
	}

	// Identical texts resolve to cached vectors instead of upstream calls
	if cfg.EmbeddingConnectorCfg.CacheTTL > 0 {
		embedder = embedding.NewCachedService(embedder, cfg.EmbeddingConnectorCfg.CacheTTL)
	}

	// Initialize validators
	fileValidator := validator.NewFileValidator(cfg.FileUploadCfg)
	logger.Info("Validators initialized")

	// Initialize use cases
	ingestUC := ingest.NewUsecase(embedder, store, cfg.RetrievalCfg, logger)
	chatUC := chat.NewUsecase(embedder, store, completer, cfg.RetrievalCfg, cfg.GenerationCfg, logger)
	logger.Info("Use cases initialized")

	// Setup API handlers
	chatHandler := chatapi.NewHandler(chatUC)
	documentHandler := documentapi.NewHandler(ingestUC, fileValidator, cfg.FileUploadCfg.MaxUploadSize)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(chatHandler, documentHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup drop-folder ingestion
	var dropWatcher *watcher.Watcher
	if cfg.WatchDir != "" {
		dropWatcher = watcher.New(cfg.WatchDir, ingestUC, logger)
		logger.Info("Drop-folder ingestion enabled", zap.String("watch_dir", cfg.WatchDir))
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:     server,
		watcher:    dropWatcher,
		closeStore: closeStore,
		logger:     logger,
	}, nil
}

// setupStore builds the configured document store backend and returns it
// with its close function.
func setupStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.DocumentStore, func(), error) {
	dim := cfg.RetrievalCfg.EmbeddingDim

	switch cfg.StorageBackend {
	case config.BackendSQLite:
		store, err := repository.NewDocumentSQLite(cfg.SQLitePath, dim)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error("Close sqlite store", zap.Error(err))
			}
		}, nil

	case config.BackendPostgres:
		db, err := setupDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("setup database: %w", err)
		}

		logger.Info("Running database migrations")
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		return repository.NewDocumentPostgres(db, dim), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
