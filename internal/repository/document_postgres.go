package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvahidi/copilot-backend/internal/entity"
)

var _ DocumentStore = &DocumentPostgres{}

// DocumentPostgres implements DocumentStore on PostgreSQL with the
// pgvector extension. Similarity is cosine: 1 - (a <=> b).
type DocumentPostgres struct {
	db  *pgxpool.Pool
	dim int
}

// NewDocumentPostgres creates the store. dim must match the vector(N)
// column created by the migrations.
func NewDocumentPostgres(db *pgxpool.Pool, dim int) *DocumentPostgres {
	return &DocumentPostgres{
		db:  db,
		dim: dim,
	}
}

func (r *DocumentPostgres) InsertChunk(ctx context.Context, chunk entity.DocumentChunk) error {
	if err := validateChunk(chunk, r.dim); err != nil {
		return err
	}

	id := chunk.ID
	if id == "" {
		id = uuid.New().String()
	}

	metadata, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return fmt.Errorf("marshal chunk metadata: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO document_chunks (id, content, metadata, embedding)
		 VALUES ($1, $2, $3, $4::vector)`,
		id, chunk.Content, metadata, formatVector(chunk.Embedding),
	)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}

	return nil
}

func (r *DocumentPostgres) SearchSimilar(ctx context.Context, vector []float32, threshold float64, limit int) ([]entity.QueryMatch, error) {
	if len(vector) != r.dim {
		return nil, fmt.Errorf("%w: got %d, store expects %d", entity.ErrDimensionMismatch, len(vector), r.dim)
	}

	rows, err := r.db.Query(ctx,
		`SELECT content, metadata, 1 - (embedding <=> $1::vector) AS score
		 FROM document_chunks
		 WHERE 1 - (embedding <=> $1::vector) >= $2
		 ORDER BY embedding <=> $1::vector
		 LIMIT $3`,
		formatVector(vector), threshold, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	var matches []entity.QueryMatch
	for rows.Next() {
		var (
			content  string
			metadata []byte
			score    float64
		)
		if err := rows.Scan(&content, &metadata, &score); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}

		match := entity.QueryMatch{Content: content, Score: score}
		if err := json.Unmarshal(metadata, &match.Metadata); err != nil {
			return nil, fmt.Errorf("%w: bad metadata: %v", entity.ErrMalformedRecord, err)
		}
		if match.Content == "" {
			return nil, fmt.Errorf("%w: empty content", entity.ErrMalformedRecord)
		}

		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}

	return matches, nil
}

func validateChunk(chunk entity.DocumentChunk, dim int) error {
	if chunk.Content == "" {
		return entity.ErrEmptyContent
	}
	if chunk.Metadata.FileName == "" {
		return fmt.Errorf("%w: file_name", entity.ErrMissingField)
	}
	if chunk.Metadata.ChunkIndex < 0 {
		return fmt.Errorf("%w: negative chunk_index", entity.ErrMalformedRecord)
	}
	if len(chunk.Embedding) != dim {
		return fmt.Errorf("%w: got %d, store expects %d", entity.ErrDimensionMismatch, len(chunk.Embedding), dim)
	}
	return nil
}
