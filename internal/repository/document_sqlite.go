package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mvahidi/copilot-backend/internal/entity"
)

var _ DocumentStore = &DocumentSQLite{}

// DocumentSQLite is an embedded DocumentStore for local runs. Vectors are
// stored as JSON and ranked in process, so it only suits small corpora.
type DocumentSQLite struct {
	db  *sql.DB
	dim int
}

func NewDocumentSQLite(path string, dim int) (*DocumentSQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &DocumentSQLite{db: db, dim: dim}
	if err := store.setupTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setup sqlite tables: %w", err)
	}

	return store, nil
}

func (r *DocumentSQLite) setupTables() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS document_chunks (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		file_name TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		embedding TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

func (r *DocumentSQLite) Close() error {
	return r.db.Close()
}

func (r *DocumentSQLite) InsertChunk(ctx context.Context, chunk entity.DocumentChunk) error {
	if err := validateChunk(chunk, r.dim); err != nil {
		return err
	}

	id := chunk.ID
	if id == "" {
		id = uuid.New().String()
	}

	embedding, err := encodeVector(chunk.Embedding)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO document_chunks (id, content, file_name, chunk_index, embedding)
		 VALUES (?, ?, ?, ?, ?)`,
		id, chunk.Content, chunk.Metadata.FileName, chunk.Metadata.ChunkIndex, string(embedding),
	)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}

	return nil
}

func (r *DocumentSQLite) SearchSimilar(ctx context.Context, vector []float32, threshold float64, limit int) ([]entity.QueryMatch, error) {
	if len(vector) != r.dim {
		return nil, fmt.Errorf("%w: got %d, store expects %d", entity.ErrDimensionMismatch, len(vector), r.dim)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT content, file_name, chunk_index, embedding FROM document_chunks`)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	defer rows.Close()

	var matches []entity.QueryMatch
	for rows.Next() {
		var (
			content   string
			fileName  string
			index     int
			embedding string
		)
		if err := rows.Scan(&content, &fileName, &index, &embedding); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if content == "" {
			return nil, fmt.Errorf("%w: empty content", entity.ErrMalformedRecord)
		}

		stored, err := decodeVector([]byte(embedding))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrMalformedRecord, err)
		}
		if len(stored) != r.dim {
			return nil, fmt.Errorf("%w: stored %d, store expects %d", entity.ErrDimensionMismatch, len(stored), r.dim)
		}

		score := cosineSimilarity(vector, stored)
		if score < threshold {
			continue
		}

		matches = append(matches, entity.QueryMatch{
			Content:  content,
			Metadata: entity.ChunkMetadata{FileName: fileName, ChunkIndex: index},
			Score:    score,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}
