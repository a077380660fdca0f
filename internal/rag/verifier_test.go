package rag

import (
	"context"
	"errors"
	"testing"
)

func TestVerifyChecksOnlyTopN(t *testing.T) {
	gen := &fakeGenerator{
		generateFn: func(_ context.Context, _, _, _ string, _ map[string]any) (map[string]any, error) {
			return map[string]any{
				"is_grounded":       true,
				"supporting_quote":  "quoted sentence",
				"unverified_reason": "",
			}, nil
		},
	}
	v := NewVerifier(testLogger(t), gen)

	cands := []Candidate{
		{Name: "a", AIReason: "r", FinalScore: 9.0},
		{Name: "b", AIReason: "r", FinalScore: 8.0},
		{Name: "c", AIReason: "r", FinalScore: 7.0},
		{Name: "d", AIReason: "r", FinalScore: 6.0},
		{Name: "e", AIReason: "r", FinalScore: 5.0},
	}
	got := v.Verify(context.Background(), "news", cands, 3)

	if gen.calls != 3 {
		t.Fatalf("verifier calls: want 3, got %d", gen.calls)
	}
	for i := 0; i < 3; i++ {
		if got[i].Verification == nil {
			t.Fatalf("candidate %d must carry a verdict", i)
		}
	}
	for i := 3; i < 5; i++ {
		if got[i].Verification != nil {
			t.Fatalf("candidate %d beyond top-n must have no verdict", i)
		}
		if got[i].FinalScore != cands[i].FinalScore {
			t.Fatalf("candidate %d beyond top-n must keep its score", i)
		}
	}
}

func TestVerifyPenalizesUngroundedByHalf(t *testing.T) {
	gen := &fakeGenerator{
		generateFn: func(_ context.Context, _, _, _ string, _ map[string]any) (map[string]any, error) {
			return map[string]any{
				"is_grounded":       false,
				"supporting_quote":  "",
				"unverified_reason": "not mentioned in the news",
			}, nil
		},
	}
	v := NewVerifier(testLogger(t), gen)

	got := v.Verify(context.Background(), "news", []Candidate{
		{Name: "a", AIReason: "r", FinalScore: 9.3},
	}, 3)

	if got[0].FinalScore != 4.7 {
		t.Fatalf("penalized score: want 4.7, got %v", got[0].FinalScore)
	}
	if got[0].Verification == nil || got[0].Verification.IsGrounded {
		t.Fatalf("verdict must be ungrounded: %+v", got[0].Verification)
	}
	if got[0].Verification.UnverifiedReason != "not mentioned in the news" {
		t.Fatalf("unverified reason mismatch: %q", got[0].Verification.UnverifiedReason)
	}
}

func TestVerifyEmptyReasonShortCircuits(t *testing.T) {
	gen := &fakeGenerator{}
	v := NewVerifier(testLogger(t), gen)

	got := v.Verify(context.Background(), "news", []Candidate{
		{Name: "디스플레이", AIReason: "", FinalScore: 1.2},
	}, 3)

	if gen.calls != 0 {
		t.Fatalf("empty reason must not call the verifier model")
	}
	verdict := got[0].Verification
	if verdict == nil || verdict.IsGrounded {
		t.Fatalf("empty reason must be ungrounded: %+v", verdict)
	}
	if verdict.UnverifiedReason != "no justification produced" {
		t.Fatalf("unverified reason mismatch: %q", verdict.UnverifiedReason)
	}
	if got[0].FinalScore != 0.6 {
		t.Fatalf("penalized score: want 0.6, got %v", got[0].FinalScore)
	}
}

func TestVerifyErrorTreatedAsUngrounded(t *testing.T) {
	gen := &fakeGenerator{
		generateFn: func(_ context.Context, _, _, _ string, _ map[string]any) (map[string]any, error) {
			return nil, errors.New("verifier model down")
		},
	}
	v := NewVerifier(testLogger(t), gen)

	got := v.Verify(context.Background(), "news", []Candidate{
		{Name: "a", AIReason: "r", FinalScore: 8.0},
	}, 3)

	verdict := got[0].Verification
	if verdict == nil || verdict.IsGrounded {
		t.Fatalf("call error must be ungrounded: %+v", verdict)
	}
	if verdict.UnverifiedReason != "verification error" {
		t.Fatalf("unverified reason mismatch: %q", verdict.UnverifiedReason)
	}
	if got[0].FinalScore != 4.0 {
		t.Fatalf("penalized score: want 4.0, got %v", got[0].FinalScore)
	}
}

func TestVerifyGroundedKeepsScore(t *testing.T) {
	gen := &fakeGenerator{
		generateFn: func(_ context.Context, _, _, _ string, _ map[string]any) (map[string]any, error) {
			return map[string]any{
				"is_grounded":       true,
				"supporting_quote":  "the article says exports fell",
				"unverified_reason": "",
			}, nil
		},
	}
	v := NewVerifier(testLogger(t), gen)

	got := v.Verify(context.Background(), "news", []Candidate{
		{Name: "반도체", AIReason: "exports fell", FinalScore: 9.0},
	}, 3)

	if got[0].FinalScore != 9.0 {
		t.Fatalf("grounded candidate must keep its score, got %v", got[0].FinalScore)
	}
	if got[0].Verification.SupportingQuote != "the article says exports fell" {
		t.Fatalf("supporting quote mismatch: %q", got[0].Verification.SupportingQuote)
	}
}

func TestVerifyDoesNotMutateInput(t *testing.T) {
	gen := &fakeGenerator{
		generateFn: func(_ context.Context, _, _, _ string, _ map[string]any) (map[string]any, error) {
			return map[string]any{
				"is_grounded":       false,
				"supporting_quote":  "",
				"unverified_reason": "over-extrapolation",
			}, nil
		},
	}
	v := NewVerifier(testLogger(t), gen)

	in := []Candidate{{Name: "a", AIReason: "r", FinalScore: 8.0}}
	_ = v.Verify(context.Background(), "news", in, 3)

	if in[0].FinalScore != 8.0 || in[0].Verification != nil {
		t.Fatalf("input slice must stay untouched: %+v", in[0])
	}
}
