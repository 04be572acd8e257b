package completion

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mvahidi/copilot-backend/internal/config"
	"github.com/mvahidi/copilot-backend/internal/entity"
	"github.com/mvahidi/copilot-backend/internal/integration/common"
	pkghttp "github.com/mvahidi/copilot-backend/pkg/http"
	"go.uber.org/zap"
)

// Service obtains a chat completion for a single system+user exchange.
type Service interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Connector struct {
	config      config.CompletionConnectorConfig
	model       string
	temperature float64
	connector   *pkghttp.Connector
	logger      *zap.Logger
}

func NewConnector(
	cfg config.CompletionConnectorConfig,
	generation config.GenerationConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector:   common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:      cfg,
		model:       generation.Model,
		temperature: generation.Temperature,
		logger:      logger,
	}
}

// Complete sends one system+user exchange to the chat completions
// endpoint. An empty completion is returned as-is; only transport and
// provider errors are errors.
func (c *Connector) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := &entity.CompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []entity.CompletionMessage{
			{Role: "system", Content: systemPrompt},
			{Role: entity.RoleUser, Content: userPrompt},
		},
	}

	var resp entity.CompletionResponse
	err := retry.Do(func() error {
		resp = entity.CompletionResponse{}
		return c.connector.DoRequest(ctx, http.MethodPost, c.config.CompletionsEndpoint, req, &resp)
	}, c.config.Retry.ToRetryOptions(ctx)...)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("invalid completion response: no choices")
	}

	answer := resp.Choices[0].Message.Content
	ctxzap.Debug(ctx, "completion received", zap.Int("answer_length", len(answer)))

	return answer, nil
}
