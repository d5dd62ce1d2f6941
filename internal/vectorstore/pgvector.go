package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type PgVectorStore struct {
	db *pgxpool.Pool
}

func NewPgVectorStore(db *pgxpool.Pool) *PgVectorStore {
	return &PgVectorStore{db: db}
}

func (s *PgVectorStore) Upsert(ctx context.Context, chunks []Chunk) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range chunks {
		id := c.ID
		if id == uuid.Nil {
			id = uuid.New()
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO pdf_chunks (id, uid, file_id, chunk_index, content, source, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET content = $5, source = $6, embedding = $7`,
			id, c.UID, c.FileID, c.ChunkIndex, c.Content, c.Source, pgvector.NewVector(c.Embedding),
		)
		if err != nil {
			return fmt.Errorf("upsert chunk %d: %w", c.ChunkIndex, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PgVectorStore) SimilaritySearch(ctx context.Context, query []float32, filter Filter, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 4
	}

	embedding := pgvector.NewVector(query)

	// The WHERE clause is the tenant-isolation boundary: both uid and
	// file_id must match exactly.
	rows, err := s.db.Query(ctx,
		`SELECT id, file_id, chunk_index, content, source,
		        1 - (embedding <=> $1) AS score
		 FROM pdf_chunks
		 WHERE uid = $2 AND file_id = $3
		 ORDER BY embedding <=> $1, chunk_index
		 LIMIT $4`,
		embedding, filter.UID, filter.FileID, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ChunkID, &r.FileID, &r.ChunkIndex, &r.Content, &r.Source, &r.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *PgVectorStore) DeleteDocument(ctx context.Context, filter Filter) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM pdf_chunks WHERE uid = $1 AND file_id = $2",
		filter.UID, filter.FileID,
	)
	if err != nil {
		return fmt.Errorf("delete document chunks: %w", err)
	}
	return nil
}
