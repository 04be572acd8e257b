package entity

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChunkMetadata identifies where a chunk came from inside its source file.
// ChunkIndex values for one FileName are contiguous, 0-based and follow
// the original document order.
type ChunkMetadata struct {
	FileName   string `json:"file_name"`
	ChunkIndex int    `json:"chunk_index"`
}

// DocumentChunk is the unit of retrievable text. Created once during
// ingestion and immutable afterwards; owned by the document store once
// persisted.
type DocumentChunk struct {
	ID        string
	Content   string
	Metadata  ChunkMetadata
	Embedding []float32
}

// Turn is a single conversation message. The backend holds no session
// state; callers pass the full history with every chat request.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryMatch is one similarity-search hit. It only lives for the duration
// of a single query.
type QueryMatch struct {
	Content  string
	Metadata ChunkMetadata
	Score    float64
}
