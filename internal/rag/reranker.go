package rag

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ordalabs/orda-backend/internal/logger"
)

// Generator produces schema-constrained structured output from a prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
}

// RerankEntry is one candidate the model considered relevant, with its
// independent 1-10 relevance score and a short justification.
type RerankEntry struct {
	Name   string
	Score  float64
	Reason string
}

// Reranker asks the analysis model to score retrieved candidates against the
// news text. Re-ranking is name-grounded: only candidate names go into the
// prompt, keeping it small regardless of description length.
type Reranker struct {
	log *logger.Logger
	gen Generator
}

func NewReranker(log *logger.Logger, gen Generator) *Reranker {
	return &Reranker{
		log: log.With("component", "Reranker"),
		gen: gen,
	}
}

// JSON field carrying the candidate name differs per partition; kept for
// compatibility with downstream consumers of stored rerank output.
func rerankNameField(partition Partition) string {
	if partition == PartitionIndustry {
		return "industry"
	}
	return "issue"
}

func rerankTask(partition Partition) string {
	if partition == PartitionIndustry {
		return "rank the candidate industries by how strongly the news affects them"
	}
	return "rank the candidate past market events by how closely their pattern matches the news"
}

type rerankItem struct {
	Industry string  `json:"industry"`
	Issue    string  `json:"issue"`
	Score    float64 `json:"score"`
	Reason   string  `json:"reason"`
}

type rerankResult struct {
	Candidates []rerankItem `json:"candidates"`
}

// Rerank returns the model's scored subset of names. The model may omit
// candidates; omitted ones keep ai_score 0 at fusion. Any call failure or
// malformed response degrades to an empty list so fusion falls back to
// vector-only ranking.
func (r *Reranker) Rerank(ctx context.Context, query string, names []string, partition Partition) []RerankEntry {
	if len(names) == 0 {
		return []RerankEntry{}
	}

	field := rerankNameField(partition)

	system := strings.Join([]string{
		"You are a market analyst who judges how relevant candidates are to a news article.",
		"Given the news text and a candidate list, " + rerankTask(partition) + ".",
		"Score each relevant candidate from 1 to 10 and give a one-sentence reason grounded in the news text.",
		"Only include candidates from the given list. Respond with JSON only.",
	}, "\n")

	user := strings.Join([]string{
		"[News]",
		strings.TrimSpace(query),
		"",
		"[Candidates]",
		strings.Join(names, ", "),
	}, "\n")

	schema := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"candidates": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						field:    map[string]any{"type": "string"},
						"score":  map[string]any{"type": "number", "minimum": 1, "maximum": 10},
						"reason": map[string]any{"type": "string"},
					},
					"required": []any{field, "score", "reason"},
				},
			},
		},
		"required": []any{"candidates"},
	}

	obj, err := r.gen.GenerateJSON(ctx, system, user, "rerank_candidates_v1", schema)
	if err != nil {
		r.log.Warn("Rerank call failed; falling back to vector-only ranking", "partition", partition, "error", err.Error())
		return []RerankEntry{}
	}

	b, err := json.Marshal(obj)
	if err != nil {
		return []RerankEntry{}
	}
	var dec rerankResult
	if err := json.Unmarshal(b, &dec); err != nil {
		r.log.Warn("Rerank response malformed; falling back to vector-only ranking", "partition", partition, "error", err.Error())
		return []RerankEntry{}
	}

	out := make([]RerankEntry, 0, len(dec.Candidates))
	for _, item := range dec.Candidates {
		name := strings.TrimSpace(item.Industry)
		if partition != PartitionIndustry {
			name = strings.TrimSpace(item.Issue)
		}
		if name == "" {
			continue
		}
		out = append(out, RerankEntry{
			Name:   name,
			Score:  item.Score,
			Reason: strings.TrimSpace(item.Reason),
		})
	}

	r.log.Debug("Rerank candidates scored", "partition", partition, "count", len(out))
	return out
}
