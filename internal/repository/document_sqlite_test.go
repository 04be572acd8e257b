package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mvahidi/copilot-backend/internal/entity"
)

func newTestStore(t *testing.T) *DocumentSQLite {
	t.Helper()

	store, err := NewDocumentSQLite(filepath.Join(t.TempDir(), "test.db"), 3)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func chunkFixture(index int, content string, embedding []float32) entity.DocumentChunk {
	return entity.DocumentChunk{
		Content:   content,
		Metadata:  entity.ChunkMetadata{FileName: "doc.pdf", ChunkIndex: index},
		Embedding: embedding,
	}
}

func TestDocumentSQLite_InsertAndSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.InsertChunk(ctx, chunkFixture(0, "exact match", []float32{1, 0, 0})); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.InsertChunk(ctx, chunkFixture(1, "unrelated", []float32{0, 1, 0})); err != nil {
		t.Fatalf("insert: %v", err)
	}

	matches, err := store.SearchSimilar(ctx, []float32{1, 0, 0}, 0.5, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match above threshold, got %d", len(matches))
	}
	if matches[0].Content != "exact match" {
		t.Errorf("unexpected match content %q", matches[0].Content)
	}
	if matches[0].Metadata.ChunkIndex != 0 {
		t.Errorf("unexpected chunk index %d", matches[0].Metadata.ChunkIndex)
	}
}

func TestDocumentSQLite_SearchOrdersByScore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.InsertChunk(ctx, chunkFixture(0, "close", []float32{0.9, 0.1, 0})); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.InsertChunk(ctx, chunkFixture(1, "closest", []float32{1, 0, 0})); err != nil {
		t.Fatalf("insert: %v", err)
	}

	matches, err := store.SearchSimilar(ctx, []float32{1, 0, 0}, 0, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) < 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Content != "closest" {
		t.Errorf("best match first, got %q", matches[0].Content)
	}
	if matches[0].Score < matches[1].Score {
		t.Error("matches not ordered by descending score")
	}
}

func TestDocumentSQLite_SearchRespectsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := store.InsertChunk(ctx, chunkFixture(i, "chunk", []float32{1, 0, 0})); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	matches, err := store.SearchSimilar(ctx, []float32{1, 0, 0}, 0, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("expected limit of 2 matches, got %d", len(matches))
	}
}

func TestDocumentSQLite_EmptyResultIsNotAnError(t *testing.T) {
	store := newTestStore(t)

	matches, err := store.SearchSimilar(context.Background(), []float32{1, 0, 0}, 0.5, 5)
	if err != nil {
		t.Fatalf("search on empty store should not error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}

func TestDocumentSQLite_RejectsDimensionMismatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.InsertChunk(ctx, chunkFixture(0, "bad", []float32{1, 0}))
	if !errors.Is(err, entity.ErrDimensionMismatch) {
		t.Errorf("insert with wrong dimension: got %v, want ErrDimensionMismatch", err)
	}

	_, err = store.SearchSimilar(ctx, []float32{1, 0}, 0, 5)
	if !errors.Is(err, entity.ErrDimensionMismatch) {
		t.Errorf("search with wrong dimension: got %v, want ErrDimensionMismatch", err)
	}
}

func TestDocumentSQLite_RejectsEmptyContent(t *testing.T) {
	store := newTestStore(t)

	err := store.InsertChunk(context.Background(), chunkFixture(0, "", []float32{1, 0, 0}))
	if !errors.Is(err, entity.ErrEmptyContent) {
		t.Errorf("got %v, want ErrEmptyContent", err)
	}
}
