package rag

import "testing"

func TestAggregateConfidenceBothPartitions(t *testing.T) {
	industries := []Candidate{
		{FinalScore: 9.0},
		{FinalScore: 5.0},
	}
	pastIssues := []Candidate{
		{FinalScore: 6.0},
		{FinalScore: 2.0},
	}

	got := AggregateConfidence(industries, pastIssues)
	// Means: 7.0 and 4.0 -> 5.5; maxima: 9.0 and 6.0 -> 7.5.
	if got.ConsistencyScore != 5.5 {
		t.Fatalf("consistency: want 5.5, got %v", got.ConsistencyScore)
	}
	if got.PeakRelevanceScore != 7.5 {
		t.Fatalf("peak: want 7.5, got %v", got.PeakRelevanceScore)
	}
}

func TestAggregateConfidenceSinglePartition(t *testing.T) {
	industries := []Candidate{
		{FinalScore: 8.0},
		{FinalScore: 4.0},
	}

	got := AggregateConfidence(industries, nil)
	if got.ConsistencyScore != 6.0 {
		t.Fatalf("consistency: want 6.0, got %v", got.ConsistencyScore)
	}
	if got.PeakRelevanceScore != 8.0 {
		t.Fatalf("peak: want 8.0, got %v", got.PeakRelevanceScore)
	}
}

func TestAggregateConfidenceBothEmpty(t *testing.T) {
	got := AggregateConfidence(nil, nil)
	if got.ConsistencyScore != 0.0 || got.PeakRelevanceScore != 0.0 {
		t.Fatalf("empty partitions must yield zero confidence, got %+v", got)
	}
}

func TestAggregateConfidenceStaysInRange(t *testing.T) {
	cases := []struct {
		name       string
		industries []Candidate
		pastIssues []Candidate
	}{
		{name: "all_max", industries: []Candidate{{FinalScore: 10}}, pastIssues: []Candidate{{FinalScore: 10}}},
		{name: "all_zero", industries: []Candidate{{FinalScore: 0}}, pastIssues: []Candidate{{FinalScore: 0}}},
		{name: "mixed", industries: []Candidate{{FinalScore: 9.9}, {FinalScore: 0.1}}, pastIssues: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AggregateConfidence(tc.industries, tc.pastIssues)
			if got.ConsistencyScore < 0 || got.ConsistencyScore > 10 {
				t.Fatalf("consistency out of range: %v", got.ConsistencyScore)
			}
			if got.PeakRelevanceScore < 0 || got.PeakRelevanceScore > 10 {
				t.Fatalf("peak out of range: %v", got.PeakRelevanceScore)
			}
		})
	}
}
