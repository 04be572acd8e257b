package embedding

import (
	"context"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	gocache "github.com/patrickmn/go-cache"
)

// CachedService decorates a Service with a TTL cache keyed by the input
// text. Safe because embeddings are deterministic per input; repeated
// queries for the same text skip the embedding round-trip.
type CachedService struct {
	inner Service
	cache *gocache.Cache
}

func NewCachedService(inner Service, ttl time.Duration) *CachedService {
	return &CachedService{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedService) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := c.cache.Get(text); ok {
		ctxzap.Debug(ctx, "embedding cache hit")
		return cached.([]float32), nil
	}

	vector, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Set(text, vector, gocache.DefaultExpiration)
	return vector, nil
}
