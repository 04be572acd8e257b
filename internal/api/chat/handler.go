package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mvahidi/copilot-backend/internal/entity"
	"github.com/mvahidi/copilot-backend/internal/pkg/logger"
	"github.com/mvahidi/copilot-backend/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	usecase ChatUsecase
}

func NewHandler(usecase ChatUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Chat handles POST /chat - Answer a question against the ingested documents
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validateHistory(req.History); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctxzap.Info(ctx, "answering query",
		zap.Int("query_len", len(req.Query)),
		zap.Int("history_len", len(req.History)),
	)

	answer, err := h.usecase.Answer(ctx, req.Query, req.History)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toChatResponse(answer))
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "failed to answer query", zap.Error(err))
	if errors.Is(err, entity.ErrEmptyQuery) {
		response.Error(w, http.StatusBadRequest, "query must not be empty")
		return
	}
	response.Error(w, http.StatusInternalServerError, "internal server error")
}
