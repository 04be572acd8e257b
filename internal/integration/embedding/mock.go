package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector produces deterministic pseudo-embeddings without any
// external service. Identical inputs always map to identical vectors,
// which is enough to exercise the full pipeline locally.
type MockConnector struct {
	dim    int
	logger *zap.Logger
}

func NewMockConnector(dim int, logger *zap.Logger) *MockConnector {
	return &MockConnector{dim: dim, logger: logger}
}

func (m *MockConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	ctxzap.Debug(ctx, "mock embedding", zap.Int("input_length", len(text)))

	digest := sha256.Sum256([]byte(text))
	vector := make([]float32, m.dim)
	for i := range vector {
		word := binary.LittleEndian.Uint32(digest[(i*4)%(len(digest)-4):])
		vector[i] = float32(word%2000)/1000 - 1 // [-1, 1)
	}
	return vector, nil
}
