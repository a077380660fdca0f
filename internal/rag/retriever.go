package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/ordalabs/orda-backend/internal/logger"
)

// Embedder converts text into fixed-dimension vectors.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// VectorSearcher runs nearest-neighbor search over one index partition.
type VectorSearcher interface {
	Search(ctx context.Context, partition string, vector []float32, topK int) ([]VectorMatch, error)
}

// VectorMatch is one raw nearest-neighbor hit. Score is cosine similarity
// in [0,1]; candidate fields live in Metadata.
type VectorMatch struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

const DefaultTopK = 10

// Retriever turns a query text into first-stage candidates for a partition.
type Retriever struct {
	log      *logger.Logger
	embedder Embedder
	searcher VectorSearcher
}

func NewRetriever(log *logger.Logger, embedder Embedder, searcher VectorSearcher) *Retriever {
	return &Retriever{
		log:      log.With("component", "Retriever"),
		embedder: embedder,
		searcher: searcher,
	}
}

// Retrieve embeds the query and collects up to topK named candidates from the
// partition, de-duplicated by name (first, highest-similarity occurrence
// wins). Any embedding or search failure degrades to an empty list; the
// enrichment of the issue carries on without this partition's candidates.
func (r *Retriever) Retrieve(ctx context.Context, query string, partition Partition, topK int) []Candidate {
	if topK <= 0 {
		topK = DefaultTopK
	}

	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil || len(vecs) == 0 || len(vecs[0]) == 0 {
		if err == nil {
			err = fmt.Errorf("empty embedding")
		}
		r.log.Warn("Query embedding failed; returning no candidates", "partition", partition, "error", err.Error())
		return []Candidate{}
	}

	matches, err := r.searcher.Search(ctx, string(partition), vecs[0], topK)
	if err != nil {
		r.log.Warn("Vector search failed; returning no candidates", "partition", partition, "error", err.Error())
		return []Candidate{}
	}

	seen := map[string]bool{}
	candidates := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSpace(metaString(m.Metadata, "name"))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		c := Candidate{
			Name:        name,
			Description: metaString(m.Metadata, "description"),
			VectorScore: vectorScoreFromSimilarity(m.Score),
		}
		if partition == PartitionPastIssue {
			c.Period = fmt.Sprintf("%s ~ %s", metaString(m.Metadata, "start_date"), metaString(m.Metadata, "end_date"))
		}
		candidates = append(candidates, c)
	}

	r.log.Debug("Vector search candidates collected", "partition", partition, "count", len(candidates))
	return candidates
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}
