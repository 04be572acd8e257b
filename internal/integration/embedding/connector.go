package embedding

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

// Service maps text to a fixed-dimension vector. The same service, with
// the same model, must be used for both ingestion and queries; mixing
// models makes the stored vectors incomparable.
type Service interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Connector struct {
	config    config.EmbeddingConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.EmbeddingConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Embed requests one embedding from the OpenAI-compatible embeddings
// endpoint, retrying transient failures.
func (c *Connector) Embed(ctx context.Context, text string) ([]float32, error) {
	req := &entity.EmbeddingRequest{
		Model: c.config.Model,
		Input: text,
	}

	var resp entity.EmbeddingResponse
	err := retry.Do(func() error {
		resp = entity.EmbeddingResponse{}
		return c.connector.DoRequest(ctx, http.MethodPost, c.config.EmbeddingsEndpoint, req, &resp)
	}, c.config.Retry.ToRetryOptions(ctx)...)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}

	if len(resp.Data) != 1 {
		return nil, fmt.Errorf("invalid embedding response: expected 1 vector, got %d", len(resp.Data))
	}
	vector := resp.Data[0].Embedding
	if len(vector) == 0 {
		return nil, fmt.Errorf("invalid embedding response: empty vector")
	}

	ctxzap.Debug(ctx, "text embedded",
		zap.Int("input_length", len(text)),
		zap.Int("dimension", len(vector)),
	)

	return vector, nil
}
