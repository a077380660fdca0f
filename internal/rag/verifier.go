package rag

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ordalabs/orda-backend/internal/logger"
)

const (
	// DefaultVerifyTopN caps verification cost: one LLM call per checked
	// candidate, so only the strongest few are audited.
	DefaultVerifyTopN = 3

	ungroundedPenalty = 0.5
)

// Verifier audits re-ranker justifications against the source text using the
// cheaper verification model. A justification the fact-checker cannot ground
// in the news halves the candidate's final score.
type Verifier struct {
	log *logger.Logger
	gen Generator
}

func NewVerifier(log *logger.Logger, gen Generator) *Verifier {
	return &Verifier{
		log: log.With("component", "Verifier"),
		gen: gen,
	}
}

// Verify checks the top topN candidates and returns the full list with
// verdicts attached to the checked ones. Candidates beyond topN pass through
// untouched, with no verification field and an unchanged final score.
// Verification runs once per candidate per pipeline run; the penalty is
// never applied twice.
func (v *Verifier) Verify(ctx context.Context, query string, candidates []Candidate, topN int) []Candidate {
	if topN <= 0 {
		topN = DefaultVerifyTopN
	}

	out := make([]Candidate, len(candidates))
	copy(out, candidates)

	n := topN
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		verdict := v.verifyReason(ctx, query, out[i].Name, out[i].AIReason)
		out[i].Verification = &verdict
		if !verdict.IsGrounded {
			out[i].FinalScore = round1(out[i].FinalScore * ungroundedPenalty)
			v.log.Debug("Candidate failed verification", "name", out[i].Name, "reason", verdict.UnverifiedReason)
		}
	}
	return out
}

type verifyVerdict struct {
	IsGrounded       bool   `json:"is_grounded"`
	SupportingQuote  string `json:"supporting_quote"`
	UnverifiedReason string `json:"unverified_reason"`
}

func (v *Verifier) verifyReason(ctx context.Context, news, itemName, reason string) Verification {
	if strings.TrimSpace(reason) == "" {
		// Nothing to check; an unjustified candidate is ungrounded by definition.
		return Verification{
			IsGrounded:       false,
			SupportingQuote:  "",
			UnverifiedReason: "no justification produced",
		}
	}

	system := strings.Join([]string{
		"You are a meticulous fact-checker.",
		"Decide whether the analysis reason is actually supported by the original news text.",
		"If supported, set is_grounded true, put the supporting sentence in supporting_quote, and leave unverified_reason empty.",
		"If the news does not support it, or the reason over-extrapolates, set is_grounded false, leave supporting_quote empty, and state the failure briefly in unverified_reason (e.g. \"not mentioned in the news\", \"over-extrapolation\", \"contradicts the news\").",
		"Respond with JSON only.",
	}, "\n")

	user := strings.Join([]string{
		"[Original news]",
		strings.TrimSpace(news),
		"",
		"[Analysis target]: " + itemName,
		"[Analysis reason]: " + reason,
	}, "\n")

	schema := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"is_grounded":       map[string]any{"type": "boolean"},
			"supporting_quote":  map[string]any{"type": "string"},
			"unverified_reason": map[string]any{"type": "string"},
		},
		"required": []any{"is_grounded", "supporting_quote", "unverified_reason"},
	}

	obj, err := v.gen.GenerateJSON(ctx, system, user, "verify_reasoning_v1", schema)
	if err != nil {
		v.log.Warn("Verification call failed; treating as ungrounded", "name", itemName, "error", err.Error())
		return Verification{
			IsGrounded:       false,
			SupportingQuote:  "",
			UnverifiedReason: "verification error",
		}
	}

	b, _ := json.Marshal(obj)
	var dec verifyVerdict
	if err := json.Unmarshal(b, &dec); err != nil {
		v.log.Warn("Verification response malformed; treating as ungrounded", "name", itemName, "error", err.Error())
		return Verification{
			IsGrounded:       false,
			SupportingQuote:  "",
			UnverifiedReason: "verification error",
		}
	}

	return Verification{
		IsGrounded:       dec.IsGrounded,
		SupportingQuote:  strings.TrimSpace(dec.SupportingQuote),
		UnverifiedReason: strings.TrimSpace(dec.UnverifiedReason),
	}
}
