package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/mvahidi/copilot-backend/internal/pkg/retry"
)

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8000"`

	// Storage configuration
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"postgres"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"copilot.db"`

	// Database configuration (postgres backend)
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// RAG pipeline configuration
	RetrievalCfg  RetrievalConfig  `envPrefix:"RETRIEVAL_"`
	GenerationCfg GenerationConfig `envPrefix:"GENERATION_"`

	// External service configurations
	EmbeddingConnectorCfg  EmbeddingConnectorConfig  `envPrefix:"EMBEDDING_"`
	CompletionConnectorCfg CompletionConnectorConfig `envPrefix:"COMPLETION_"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Drop-folder ingestion; disabled when empty
	WatchDir string `env:"WATCH_DIR"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// RetrievalConfig tunes chunking and similarity search.
//
// MatchThreshold is policy, not mechanism: 0.0 is the permissive preset
// (maximum recall, unrelated queries may still get "context"), 0.5 the
// precise one. It directly controls the grounded/ungrounded branch.
type RetrievalConfig struct {
	ChunkSize      int     `env:"CHUNK_SIZE" envDefault:"500"`
	MatchThreshold float64 `env:"MATCH_THRESHOLD" envDefault:"0.5"`
	MatchCount     int     `env:"MATCH_COUNT" envDefault:"5"`
	HistoryWindow  int     `env:"HISTORY_WINDOW" envDefault:"5"`
	EmbeddingDim   int     `env:"EMBEDDING_DIM" envDefault:"384"`
	EmbedWorkers   int     `env:"EMBED_WORKERS" envDefault:"4"`
}

// GenerationConfig tunes the completion step. FallbackMessage is returned
// verbatim whenever the completion provider fails.
type GenerationConfig struct {
	Model           string  `env:"MODEL" envDefault:"llama-3.1-8b-instant"`
	Temperature     float64 `env:"TEMPERATURE" envDefault:"0.0"`
	Language        string  `env:"LANGUAGE" envDefault:"Persian"`
	FallbackMessage string  `env:"FALLBACK_MESSAGE" envDefault:"خطا در تولید پاسخ."`
}

type EmbeddingConnectorConfig struct {
	HTTPClientConfig
	Model              string               `env:"MODEL" envDefault:"paraphrase-multilingual-MiniLM-L12-v2"`
	EmbeddingsEndpoint string               `env:"EMBEDDINGS_ENDPOINT" envDefault:"/embeddings"`
	CacheTTL           time.Duration        `env:"CACHE_TTL" envDefault:"10m"`
	Retry              pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type CompletionConnectorConfig struct {
	HTTPClientConfig
	CompletionsEndpoint string               `env:"COMPLETIONS_ENDPOINT" envDefault:"/chat/completions"`
	Retry               pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

// FileUploadConfig holds upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"5242880"`    // 5 MiB
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"` // 32 MiB multipart memory cap
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	switch cfg.StorageBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (expected postgres or sqlite)", cfg.StorageBackend)
	}

	if cfg.RetrievalCfg.ChunkSize < 1 {
		return fmt.Errorf("RETRIEVAL_CHUNK_SIZE must be positive, got %d", cfg.RetrievalCfg.ChunkSize)
	}

	if t := cfg.RetrievalCfg.MatchThreshold; t < -1 || t > 1 {
		return fmt.Errorf("RETRIEVAL_MATCH_THRESHOLD must be within [-1, 1], got %g", t)
	}

	if cfg.RetrievalCfg.MatchCount < 1 || cfg.RetrievalCfg.MatchCount > 100 {
		return fmt.Errorf("RETRIEVAL_MATCH_COUNT must be between 1 and 100, got %d", cfg.RetrievalCfg.MatchCount)
	}

	if cfg.RetrievalCfg.HistoryWindow < 0 {
		return fmt.Errorf("RETRIEVAL_HISTORY_WINDOW must be non-negative, got %d", cfg.RetrievalCfg.HistoryWindow)
	}

	// Must match the vector(N) column created by the migrations.
	if cfg.RetrievalCfg.EmbeddingDim < 1 {
		return fmt.Errorf("RETRIEVAL_EMBEDDING_DIM must be positive, got %d", cfg.RetrievalCfg.EmbeddingDim)
	}

	if cfg.RetrievalCfg.EmbedWorkers < 1 || cfg.RetrievalCfg.EmbedWorkers > 64 {
		return fmt.Errorf("RETRIEVAL_EMBED_WORKERS must be between 1 and 64, got %d", cfg.RetrievalCfg.EmbedWorkers)
	}

	if temp := cfg.GenerationCfg.Temperature; temp < 0 || temp > 0.3 {
		return fmt.Errorf("GENERATION_TEMPERATURE must be within [0, 0.3], got %g", temp)
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		return fmt.Errorf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns)
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns)
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
