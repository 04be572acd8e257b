package chat

import (
	"context"

	"github.com/mvahidi/copilot-backend/internal/entity"
)

type ChatUsecase interface {
	Answer(ctx context.Context, query string, history []entity.Turn) (string, error)
}
