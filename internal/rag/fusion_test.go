package rag

import "testing"

func TestCombineWeightsAndRounding(t *testing.T) {
	vector := []Candidate{
		{Name: "반도체", Description: "chip makers", VectorScore: 9.1},
		{Name: "디스플레이", Description: "display panels", VectorScore: 4.0},
	}
	ai := []RerankEntry{
		{Name: "반도체", Score: 9, Reason: "export controls hit chip makers directly"},
	}

	got := Combine(vector, ai)
	if len(got) != 2 {
		t.Fatalf("candidates: want 2, got %d", len(got))
	}
	if got[0].Name != "반도체" || got[0].FinalScore != 9.0 {
		t.Fatalf("반도체 final: want 9.0, got %v", got[0].FinalScore)
	}
	if got[1].Name != "디스플레이" || got[1].FinalScore != 1.2 {
		t.Fatalf("디스플레이 final: want 1.2, got %v", got[1].FinalScore)
	}
	if got[1].AIScore != 0 || got[1].AIReason != "" {
		t.Fatalf("unreranked candidate must keep zero ai fields, got %+v", got[1])
	}
}

func TestCombineIsDeterministic(t *testing.T) {
	vector := []Candidate{
		{Name: "a", VectorScore: 7.3},
		{Name: "b", VectorScore: 5.5},
	}
	ai := []RerankEntry{
		{Name: "a", Score: 6, Reason: "r"},
		{Name: "b", Score: 8, Reason: "r"},
	}

	first := Combine(vector, ai)
	for i := 0; i < 10; i++ {
		again := Combine(vector, ai)
		for j := range first {
			if again[j].Name != first[j].Name || again[j].FinalScore != first[j].FinalScore {
				t.Fatalf("run %d diverged at %d: %+v vs %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestCombineNeverFabricatesCandidates(t *testing.T) {
	vector := []Candidate{
		{Name: "철강", VectorScore: 6.0},
	}
	ai := []RerankEntry{
		{Name: "철강", Score: 5, Reason: "r"},
		{Name: "조선", Score: 10, Reason: "hallucinated"},
		{Name: "", Score: 10, Reason: "nameless"},
	}

	got := Combine(vector, ai)
	if len(got) != 1 || got[0].Name != "철강" {
		t.Fatalf("output must stay within the vector set, got %+v", got)
	}
}

func TestCombineSortsDescendingWithStableTies(t *testing.T) {
	vector := []Candidate{
		{Name: "first", VectorScore: 5.0},
		{Name: "second", VectorScore: 5.0},
		{Name: "third", VectorScore: 8.0},
	}

	got := Combine(vector, nil)
	if got[0].Name != "third" {
		t.Fatalf("highest final score must sort first, got %s", got[0].Name)
	}
	// first and second tie at 1.5; vector-search order must hold.
	if got[1].Name != "first" || got[2].Name != "second" {
		t.Fatalf("tie must keep retrieval order, got %s then %s", got[1].Name, got[2].Name)
	}
}

func TestCombineEmptyInputs(t *testing.T) {
	if got := Combine(nil, nil); len(got) != 0 {
		t.Fatalf("empty inputs must yield empty output, got %d", len(got))
	}
	got := Combine(nil, []RerankEntry{{Name: "ghost", Score: 9}})
	if len(got) != 0 {
		t.Fatalf("ai-only candidates must be discarded, got %d", len(got))
	}
}
