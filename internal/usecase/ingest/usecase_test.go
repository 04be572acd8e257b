package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mvahidi/copilot-backend/internal/config"
	"github.com/mvahidi/copilot-backend/internal/entity"
	"go.uber.org/zap"
)

// mockEmbedder implements Embedder for testing
type mockEmbedder struct {
	embedFn func(text string) ([]float32, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedFn != nil {
		return m.embedFn(text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// mockStore implements DocumentStore for testing
type mockStore struct {
	mu       sync.Mutex
	chunks   []entity.DocumentChunk
	insertFn func(chunk entity.DocumentChunk) error
}

func (m *mockStore) InsertChunk(ctx context.Context, chunk entity.DocumentChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertFn != nil {
		if err := m.insertFn(chunk); err != nil {
			return err
		}
	}
	m.chunks = append(m.chunks, chunk)
	return nil
}

func testRetrievalConfig(chunkSize int) config.RetrievalConfig {
	return config.RetrievalConfig{
		ChunkSize:    chunkSize,
		EmbedWorkers: 2,
	}
}

func TestIngest_StoresChunksInOrder(t *testing.T) {
	store := &mockStore{}
	uc := NewUsecase(&mockEmbedder{}, store, testRetrievalConfig(500), zap.NewNop())

	written, err := uc.Ingest(context.Background(), "doc.pdf", strings.Repeat("y", 1200))
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if written != 3 {
		t.Fatalf("expected 3 chunks written, got %d", written)
	}

	for i, chunk := range store.chunks {
		if chunk.Metadata.FileName != "doc.pdf" {
			t.Errorf("chunk %d file_name = %q", i, chunk.Metadata.FileName)
		}
		if chunk.Metadata.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, chunk.Metadata.ChunkIndex)
		}
		if len(chunk.Embedding) == 0 {
			t.Errorf("chunk %d has no embedding", i)
		}
	}
	if len(store.chunks[0].Content) != 500 || len(store.chunks[2].Content) != 200 {
		t.Errorf("unexpected chunk lengths %d, %d",
			len(store.chunks[0].Content), len(store.chunks[2].Content))
	}
}

func TestIngest_EmptyDocument(t *testing.T) {
	uc := NewUsecase(&mockEmbedder{}, &mockStore{}, testRetrievalConfig(500), zap.NewNop())

	_, err := uc.Ingest(context.Background(), "empty.pdf", "   \n ")
	if !errors.Is(err, entity.ErrEmptyDocument) {
		t.Errorf("got %v, want ErrEmptyDocument", err)
	}
}

func TestIngest_ContinuesAfterInsertFailure(t *testing.T) {
	store := &mockStore{
		insertFn: func(chunk entity.DocumentChunk) error {
			if chunk.Metadata.ChunkIndex == 1 {
				return errors.New("connection reset")
			}
			return nil
		},
	}
	uc := NewUsecase(&mockEmbedder{}, store, testRetrievalConfig(100), zap.NewNop())

	written, err := uc.Ingest(context.Background(), "doc.pdf", strings.Repeat("z", 300))
	if err != nil {
		t.Fatalf("partial failure must not fail the call: %v", err)
	}
	if written != 2 {
		t.Errorf("expected 2 of 3 chunks written, got %d", written)
	}
}

func TestIngest_ContinuesAfterEmbedFailure(t *testing.T) {
	calls := 0
	var mu sync.Mutex
	embedder := &mockEmbedder{
		embedFn: func(text string) ([]float32, error) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if calls == 1 {
				return nil, errors.New("embedding service down")
			}
			return []float32{1}, nil
		},
	}
	store := &mockStore{}
	uc := NewUsecase(embedder, store, testRetrievalConfig(100), zap.NewNop())

	written, err := uc.Ingest(context.Background(), "doc.pdf", strings.Repeat("q", 300))
	if err != nil {
		t.Fatalf("per-chunk embed failure must not fail the call: %v", err)
	}
	if written != 2 {
		t.Errorf("expected 2 of 3 chunks written, got %d", written)
	}
}

func TestIngest_AllChunksFailed(t *testing.T) {
	embedder := &mockEmbedder{
		embedFn: func(text string) ([]float32, error) {
			return nil, errors.New("embedding service down")
		},
	}
	uc := NewUsecase(embedder, &mockStore{}, testRetrievalConfig(100), zap.NewNop())

	written, err := uc.Ingest(context.Background(), "doc.pdf", "some content")
	if err == nil {
		t.Error("expected an error when nothing could be written")
	}
	if written != 0 {
		t.Errorf("expected 0 chunks written, got %d", written)
	}
}
