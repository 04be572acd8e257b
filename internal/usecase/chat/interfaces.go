package chat

import (
	"context"

	"github.com/mvahidi/copilot-backend/internal/entity"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type DocumentSearcher interface {
	SearchSimilar(ctx context.Context, vector []float32, threshold float64, limit int) ([]entity.QueryMatch, error)
}

type CompletionService interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
