package repository

import (
	"context"

	"github.com/mvahidi/copilot-backend/internal/entity"
)

// DocumentStore persists document chunks and answers similarity queries.
//
// InsertChunk is at-least-once: a failed chunk does not roll back chunks
// already written for the same file. SearchSimilar returns an empty slice,
// not an error, when nothing reaches the threshold.
type DocumentStore interface {
	InsertChunk(ctx context.Context, chunk entity.DocumentChunk) error
	SearchSimilar(ctx context.Context, vector []float32, threshold float64, limit int) ([]entity.QueryMatch, error)
}
