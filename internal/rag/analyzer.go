package rag

import (
	"context"
	"fmt"
	"sort"

	"github.com/ordalabs/orda-backend/internal/logger"
)

// Analyzer runs the full enrichment for one issue: per partition
// retrieve → rerank → combine → verify(top-N) → resort, then confidence
// aggregation across both partitions. Partitions are independent; a failed
// stage degrades that partition to an empty list and the issue still gets a
// result.
type Analyzer struct {
	log       *logger.Logger
	retriever *Retriever
	reranker  *Reranker
	verifier  *Verifier

	topK       int
	verifyTopN int
}

func NewAnalyzer(log *logger.Logger, retriever *Retriever, reranker *Reranker, verifier *Verifier, topK, verifyTopN int) *Analyzer {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if verifyTopN <= 0 {
		verifyTopN = DefaultVerifyTopN
	}
	return &Analyzer{
		log:        log.With("component", "Analyzer"),
		retriever:  retriever,
		reranker:   reranker,
		verifier:   verifier,
		topK:       topK,
		verifyTopN: verifyTopN,
	}
}

func (a *Analyzer) analyzePartition(ctx context.Context, query string, partition Partition) []Candidate {
	vectorCands := a.retriever.Retrieve(ctx, query, partition, a.topK)
	if len(vectorCands) == 0 {
		return []Candidate{}
	}

	names := make([]string, len(vectorCands))
	for i, c := range vectorCands {
		names[i] = c.Name
	}
	aiCands := a.reranker.Rerank(ctx, query, names, partition)

	combined := Combine(vectorCands, aiCands)
	verified := a.verifier.Verify(ctx, query, combined, a.verifyTopN)

	// Penalties can demote a verified candidate below an unverified one.
	sort.SliceStable(verified, func(i, j int) bool {
		return verified[i].FinalScore > verified[j].FinalScore
	})
	return verified
}

// AnalyzeIssue enriches a single issue. It never returns an error: a failure
// anywhere degrades to empty candidate lists, zero confidence, and an error
// note on the result.
func (a *Analyzer) AnalyzeIssue(ctx context.Context, input IssueInput) (result Result) {
	result = Result{
		Input:      input,
		Industries: []Candidate{},
		PastIssues: []Candidate{},
	}

	defer func() {
		if r := recover(); r != nil {
			a.log.Error("Issue enrichment panicked", "title", input.Title, "panic", fmt.Sprint(r))
			result.Industries = []Candidate{}
			result.PastIssues = []Candidate{}
			result.Confidence = Confidence{}
			result.ErrNote = fmt.Sprintf("enrichment failed: %v", r)
		}
	}()

	query := input.Query()

	result.Industries = a.analyzePartition(ctx, query, PartitionIndustry)
	result.PastIssues = a.analyzePartition(ctx, query, PartitionPastIssue)
	result.Confidence = AggregateConfidence(result.Industries, result.PastIssues)

	a.log.Info("Issue enriched",
		"title", input.Title,
		"industries", len(result.Industries),
		"past_issues", len(result.PastIssues),
		"consistency", result.Confidence.ConsistencyScore,
		"peak", result.Confidence.PeakRelevanceScore,
	)
	return result
}

// AnalyzeBatch enriches issues sequentially, one result per input in input
// order. One issue's failure never aborts the batch.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, inputs []IssueInput) []Result {
	a.log.Info("Enrichment batch started", "issues", len(inputs))
	results := make([]Result, 0, len(inputs))
	for i, input := range inputs {
		a.log.Debug("Enriching issue", "index", i+1, "total", len(inputs), "title", input.Title)
		results = append(results, a.AnalyzeIssue(ctx, input))
	}
	return results
}
