package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mvahidi/copilot-backend/internal/config"
	"github.com/mvahidi/copilot-backend/internal/entity"
	"go.uber.org/zap"
)

// Usecase is the retrieval-augmented answering pipeline:
// embed the query, search the store, branch between context-grounded and
// general-knowledge generation, and always come back with an answer.
type Usecase struct {
	embedder  Embedder
	store     DocumentSearcher
	completer CompletionService

	threshold     float64
	matchCount    int
	historyWindow int
	language      string
	fallback      string

	logger *zap.Logger
}

// NewUsecase creates the chat use case
func NewUsecase(
	embedder Embedder,
	store DocumentSearcher,
	completer CompletionService,
	retrieval config.RetrievalConfig,
	generation config.GenerationConfig,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		embedder:      embedder,
		store:         store,
		completer:     completer,
		threshold:     retrieval.MatchThreshold,
		matchCount:    retrieval.MatchCount,
		historyWindow: retrieval.HistoryWindow,
		language:      generation.Language,
		fallback:      generation.FallbackMessage,
		logger:        logger,
	}
}

// Answer runs the query pipeline. Only query embedding failure is fatal:
// without a vector there is nothing to search. A failed or empty search
// silently degrades to general-knowledge mode, and a failed completion
// degrades to the configured fallback message. "No answer" is worse UX
// than a possibly ungrounded one.
func (uc *Usecase) Answer(ctx context.Context, query string, history []entity.Turn) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", entity.ErrEmptyQuery
	}

	vector, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	matches, err := uc.store.SearchSimilar(ctx, vector, uc.threshold, uc.matchCount)
	if err != nil {
		ctxzap.Warn(ctx, "similarity search failed, answering without context", zap.Error(err))
		matches = nil
	}

	contextText := joinMatches(matches)
	ctxzap.Info(ctx, "retrieval finished",
		zap.Int("match_count", len(matches)),
		zap.Bool("grounded", contextText != ""),
	)

	answer, err := uc.generate(ctx, query, contextText, Window(history, uc.historyWindow))
	if err != nil {
		ctxzap.Error(ctx, "generation failed, returning fallback answer", zap.Error(err))
		return uc.fallback, nil
	}

	return answer, nil
}

// generate builds the prompts and calls the completion provider. Provider
// failures come back as *entity.GenerationError; the conversion to the
// fallback string happens only in Answer, so callers of generate can tell
// a failed provider from an empty completion.
func (uc *Usecase) generate(ctx context.Context, query, contextText string, history []entity.Turn) (string, error) {
	systemPrompt := buildSystemPrompt(uc.language)
	userPrompt := buildUserPrompt(query, contextText, history)

	answer, err := uc.completer.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", &entity.GenerationError{Err: err}
	}

	return answer, nil
}

// joinMatches assembles the grounded context, best match first.
func joinMatches(matches []entity.QueryMatch) string {
	if len(matches) == 0 {
		return ""
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n\n")
}
