package vectorstore

import (
	"context"

	"github.com/google/uuid"
)

// Filter scopes every query to exactly one user's view of one document.
// Records whose metadata does not match both fields must never be returned.
type Filter struct {
	UID    string
	FileID uuid.UUID
}

type Chunk struct {
	ID         uuid.UUID
	UID        string
	FileID     uuid.UUID
	ChunkIndex int
	Content    string
	Source     string
	Embedding  []float32
}

type SearchResult struct {
	ChunkID    uuid.UUID `json:"chunk_id"`
	FileID     uuid.UUID `json:"file_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Source     string    `json:"source"`
	Score      float64   `json:"score"`
}

type VectorStore interface {
	// Upsert stores all chunks in a single atomic batch: either every
	// record is queryable afterwards or none is.
	Upsert(ctx context.Context, chunks []Chunk) error

	// SimilaritySearch returns up to topK records matching the filter
	// exactly, most similar first; ties break on chunk index.
	SimilaritySearch(ctx context.Context, query []float32, filter Filter, topK int) ([]SearchResult, error)

	// DeleteDocument removes every record matching the filter.
	DeleteDocument(ctx context.Context, filter Filter) error
}
