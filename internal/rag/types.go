package rag

import (
	"math"
	"time"
)

// Partition selects one logical subdivision of the vector index.
type Partition string

const (
	PartitionIndustry  Partition = "industry"
	PartitionPastIssue Partition = "past_issue"
)

// Candidate is one retrieved, scored, and possibly verified entity proposed
// as relevant to an issue. Name is the only identity key; it joins the
// vector-search stage to the re-ranking stage.
type Candidate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// Period is set only for past-issue candidates ("start ~ end").
	Period string `json:"period,omitempty"`

	VectorScore float64 `json:"vector_score"`
	AIScore     float64 `json:"ai_score"`
	AIReason    string  `json:"ai_reason"`
	FinalScore  float64 `json:"final_score"`

	// Verification is present only for candidates that went through the
	// verification layer; candidates beyond the top-N pass through without it.
	Verification *Verification `json:"verification,omitempty"`
}

// Verification is the fact-checker verdict on a candidate's AI justification.
type Verification struct {
	IsGrounded       bool   `json:"is_grounded"`
	SupportingQuote  string `json:"supporting_quote"`
	UnverifiedReason string `json:"unverified_reason"`
}

// Confidence summarizes one issue's enrichment quality across both partitions.
type Confidence struct {
	ConsistencyScore   float64 `json:"consistency_score"`
	PeakRelevanceScore float64 `json:"peak_relevance_score"`
}

// IssueInput is the canonical filtered-issue shape handed to the analyzer.
type IssueInput struct {
	IssueNumber         int       `json:"issue_number"`
	Title               string    `json:"title"`
	Content             string    `json:"content"`
	Category            string    `json:"category"`
	ExtractedAt         time.Time `json:"extracted_at"`
	StockRelevanceScore float64   `json:"stock_relevance_score"`
	Rank                int       `json:"rank"`
}

// Result is one issue's enrichment. Callers always receive exactly one
// Result per input issue; "nothing found" is empty lists and zero
// confidence, never a missing entry.
type Result struct {
	Input      IssueInput  `json:"issue"`
	Industries []Candidate `json:"industries"`
	PastIssues []Candidate `json:"past_issues"`
	Confidence Confidence  `json:"confidence"`
	// ErrNote is set when enrichment of this issue failed as a whole.
	ErrNote string `json:"error,omitempty"`
}

// Query joins title and body the way every retrieval stage sees the issue.
func (in IssueInput) Query() string {
	if in.Title == "" {
		return in.Content
	}
	return in.Title + "\n" + in.Content
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// vectorScoreFromSimilarity rescales a 0-1 cosine similarity to the 0-10
// candidate score range. The clamp assumes the index already normalizes
// similarity to 0-1; a different index metric needs a change here only.
func vectorScoreFromSimilarity(sim float64) float64 {
	score := round1(sim*100) / 10
	return math.Min(score, 10)
}
