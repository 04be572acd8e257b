package ingest

import (
	"context"

	"github.com/mvahidi/copilot-backend/internal/entity"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type DocumentStore interface {
	InsertChunk(ctx context.Context, chunk entity.DocumentChunk) error
}
