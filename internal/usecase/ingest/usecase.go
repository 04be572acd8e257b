package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mvahidi/copilot-backend/internal/config"
	"github.com/mvahidi/copilot-backend/internal/entity"
	"github.com/mvahidi/copilot-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// Usecase turns extracted document text into stored, searchable chunks.
type Usecase struct {
	embedder  Embedder
	store     DocumentStore
	chunkSize int
	workers   int
	logger    *zap.Logger
}

// NewUsecase creates the ingestion use case
func NewUsecase(
	embedder Embedder,
	store DocumentStore,
	cfg config.RetrievalConfig,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		embedder:  embedder,
		store:     store,
		chunkSize: cfg.ChunkSize,
		workers:   cfg.EmbedWorkers,
		logger:    logger,
	}
}

// Ingest chunks the text, embeds every chunk and persists them with
// {file_name, chunk_index} metadata. Ingestion is best-effort: a chunk
// whose embedding or insert fails is logged and skipped, the rest of the
// file still goes through. Returns the number of chunks written; an
// error is returned only when the document is empty or nothing at all
// could be written.
func (uc *Usecase) Ingest(ctx context.Context, fileName, fullText string) (int, error) {
	if strings.TrimSpace(fullText) == "" {
		return 0, entity.ErrEmptyDocument
	}

	ctx = logger.AddFields(ctx, zap.String("file_name", fileName))

	texts := SplitText(fullText, uc.chunkSize)
	ctxzap.Info(ctx, "ingesting document", zap.Int("chunk_count", len(texts)))

	vectors, errs := uc.embedChunks(ctx, texts)

	var written int
	var firstErr error
	for i, text := range texts {
		if errs[i] != nil {
			ctxzap.Warn(ctx, "skipping chunk: embedding failed",
				zap.Int("chunk_index", i), zap.Error(errs[i]))
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}

		chunk := entity.DocumentChunk{
			ID:        uuid.New().String(),
			Content:   text,
			Metadata:  entity.ChunkMetadata{FileName: fileName, ChunkIndex: i},
			Embedding: vectors[i],
		}

		if err := uc.store.InsertChunk(ctx, chunk); err != nil {
			ctxzap.Warn(ctx, "skipping chunk: insert failed",
				zap.Int("chunk_index", i), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		written++
	}

	if written == 0 {
		return 0, fmt.Errorf("no chunks written for %s: %w", fileName, firstErr)
	}

	ctxzap.Info(ctx, "document ingested",
		zap.Int("chunks_written", written),
		zap.Int("chunks_skipped", len(texts)-written),
	)

	return written, nil
}

// embedChunks embeds all chunks through a bounded worker pool. Chunk
// embeddings are mutually independent, so order of computation does not
// matter; results come back indexed.
func (uc *Usecase) embedChunks(ctx context.Context, texts []string) ([][]float32, []error) {
	vectors := make([][]float32, len(texts))
	errs := make([]error, len(texts))

	workers := uc.workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(texts) {
		workers = len(texts)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				vectors[i], errs[i] = uc.embedder.Embed(ctx, texts[i])
			}
		}()
	}

	for i := range texts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return vectors, errs
}
