package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ordalabs/orda-backend/internal/clients/openai"
	"github.com/ordalabs/orda-backend/internal/clients/pinecone"
	"github.com/ordalabs/orda-backend/internal/logger"
)

// VectorEntry is one knowledge-base record to embed and index: an industry
// profile or a past market event.
type VectorEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

// VectorService loads knowledge-base entries into the vector index. It backs
// the admin endpoint used to seed and refresh the industry and past-issue
// namespaces.
type VectorService struct {
	log   *logger.Logger
	ai    openai.Client
	store pinecone.VectorStore
}

func NewVectorService(log *logger.Logger, ai openai.Client, store pinecone.VectorStore) *VectorService {
	return &VectorService{
		log:   log.With("service", "VectorService"),
		ai:    ai,
		store: store,
	}
}

// UpsertEntries embeds each entry's name and description together and writes
// the vectors into the given namespace. Entries without a name are rejected
// up front so a partial batch never reaches the index.
func (s *VectorService) UpsertEntries(ctx context.Context, namespace string, entries []VectorEntry) (int, error) {
	if s.store == nil {
		return 0, fmt.Errorf("vector store not configured")
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return 0, fmt.Errorf("namespace required")
	}
	if len(entries) == 0 {
		return 0, nil
	}

	texts := make([]string, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return 0, fmt.Errorf("entry %d: name required", i)
		}
		texts = append(texts, strings.TrimSpace(e.Name+"\n"+e.Description))
	}

	embeddings, err := s.ai.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed entries: %w", err)
	}
	if len(embeddings) != len(entries) {
		return 0, fmt.Errorf("embedding count mismatch: want %d, got %d", len(entries), len(embeddings))
	}

	vectors := make([]pinecone.Vector, 0, len(entries))
	for i, e := range entries {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			id = uuid.NewString()
		}
		meta := map[string]any{
			"name":        strings.TrimSpace(e.Name),
			"description": strings.TrimSpace(e.Description),
		}
		if e.StartDate != "" {
			meta["start_date"] = e.StartDate
		}
		if e.EndDate != "" {
			meta["end_date"] = e.EndDate
		}
		vectors = append(vectors, pinecone.Vector{
			ID:       id,
			Values:   embeddings[i],
			Metadata: meta,
		})
	}

	if err := s.store.Upsert(ctx, namespace, vectors); err != nil {
		return 0, fmt.Errorf("upsert vectors: %w", err)
	}

	s.log.Info("Knowledge-base entries indexed", "namespace", namespace, "count", len(vectors))
	return len(vectors), nil
}
