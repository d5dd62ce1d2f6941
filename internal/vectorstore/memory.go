package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process VectorStore used when no database is
// configured, and by tests. Records are kept in insertion order so that
// equal-score results rank deterministically.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Upsert(_ context.Context, chunks []Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if i := s.indexOf(c.ID); i >= 0 {
			s.records[i] = c
			continue
		}
		s.records = append(s.records, c)
	}
	return nil
}

func (s *MemoryStore) SimilaritySearch(_ context.Context, query []float32, filter Filter, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 4
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		chunk Chunk
		score float64
	}

	var matches []scored
	for _, c := range s.records {
		if c.UID != filter.UID || c.FileID != filter.FileID {
			continue
		}
		matches = append(matches, scored{chunk: c, score: cosineSimilarity(query, c.Embedding)})
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			ChunkID:    m.chunk.ID,
			FileID:     m.chunk.FileID,
			ChunkIndex: m.chunk.ChunkIndex,
			Content:    m.chunk.Content,
			Source:     m.chunk.Source,
			Score:      m.score,
		}
	}
	return results, nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, filter Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, c := range s.records {
		if c.UID == filter.UID && c.FileID == filter.FileID {
			continue
		}
		kept = append(kept, c)
	}
	s.records = kept
	return nil
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore) indexOf(id uuid.UUID) int {
	for i, c := range s.records {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
