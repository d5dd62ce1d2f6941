package rag

import (
	"context"
	"fmt"

	"github.com/docuchat/docuchat/internal/embedding"
	"github.com/docuchat/docuchat/internal/vectorstore"
)

const defaultTopK = 4

// Retriever answers similarity queries for exactly one (uid, file) pair.
// The filter is fixed at construction and never changes, which is what
// keeps one retriever from ever seeing another document's chunks.
type Retriever struct {
	store    vectorstore.VectorStore
	embedder *embedding.Service
	filter   vectorstore.Filter
	topK     int
}

func NewRetriever(store vectorstore.VectorStore, embedder *embedding.Service, filter vectorstore.Filter, topK int) *Retriever {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Retriever{
		store:    store,
		embedder: embedder,
		filter:   filter,
		topK:     topK,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, question string) ([]vectorstore.SearchResult, error) {
	queryVec, err := r.embedder.EmbedSingle(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embed question: %v", ErrEmbedding, err)
	}

	results, err := r.store.SimilaritySearch(ctx, queryVec, r.filter, r.topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	return results, nil
}
