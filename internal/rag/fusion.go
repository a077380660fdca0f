package rag

import "sort"

// Fusion weights. AI relevance dominates; vector similarity anchors the
// ranking when the re-ranker is silent.
const (
	vectorWeight = 0.3
	aiWeight     = 0.7
)

// Combine overlays re-ranker scores onto the vector-sourced candidate set
// and computes each candidate's fused final score. Pure function, no I/O.
//
// Names appearing only in the rerank output are discarded: the model cannot
// introduce candidates that were never retrieved. Names the model omitted
// keep ai_score 0, so their ranking degrades to vector similarity alone.
// Output is sorted by final score descending; ties keep vector-search order.
func Combine(vectorCands []Candidate, aiCands []RerankEntry) []Candidate {
	out := make([]Candidate, len(vectorCands))
	index := make(map[string]int, len(vectorCands))
	for i, c := range vectorCands {
		c.AIScore = 0
		c.AIReason = ""
		out[i] = c
		index[c.Name] = i
	}

	for _, e := range aiCands {
		i, ok := index[e.Name]
		if !ok {
			continue
		}
		out[i].AIScore = e.Score
		out[i].AIReason = e.Reason
	}

	for i := range out {
		out[i].FinalScore = round1(out[i].VectorScore*vectorWeight + out[i].AIScore*aiWeight)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalScore > out[j].FinalScore
	})
	return out
}
