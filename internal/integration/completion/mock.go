package completion

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers without an external model.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctxzap.Info(ctx, "mock completion",
		zap.Int("system_length", len(systemPrompt)),
		zap.Int("user_length", len(userPrompt)),
	)
	return fmt.Sprintf("mock answer (%d chars of prompt)", len(userPrompt)), nil
}
