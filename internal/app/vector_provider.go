package app

import (
	"context"
	"fmt"

	"github.com/ordalabs/orda-backend/internal/clients/pinecone"
	"github.com/ordalabs/orda-backend/internal/rag"
)

// pineconeSearcher adapts the namespaced Pinecone store to the retriever's
// search surface.
type pineconeSearcher struct {
	store pinecone.VectorStore
}

func (s *pineconeSearcher) Search(ctx context.Context, partition string, vector []float32, topK int) ([]rag.VectorMatch, error) {
	matches, err := s.store.QueryMatches(ctx, partition, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("pinecone query (%s): %w", partition, err)
	}
	out := make([]rag.VectorMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, rag.VectorMatch{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}
	return out, nil
}

// disabledSearcher stands in when no vector index is configured; every issue
// then degrades to empty candidate lists.
type disabledSearcher struct{}

func (disabledSearcher) Search(ctx context.Context, partition string, vector []float32, topK int) ([]rag.VectorMatch, error) {
	return []rag.VectorMatch{}, nil
}

func resolveVectorSearcher(c Clients) rag.VectorSearcher {
	if c.VectorStore == nil {
		return disabledSearcher{}
	}
	return &pineconeSearcher{store: c.VectorStore}
}
