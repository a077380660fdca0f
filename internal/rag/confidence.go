package rag

// AggregateConfidence derives an issue's two confidence metrics from its
// final candidate lists. Consistency averages the per-partition mean final
// scores; peak relevance averages the per-partition maxima. A partition with
// no candidates contributes nothing; with both empty, both metrics are 0.0.
func AggregateConfidence(industries, pastIssues []Candidate) Confidence {
	var (
		meanSum, peakSum float64
		parts            int
	)

	for _, cands := range [][]Candidate{industries, pastIssues} {
		if len(cands) == 0 {
			continue
		}
		var sum, max float64
		for i, c := range cands {
			sum += c.FinalScore
			if i == 0 || c.FinalScore > max {
				max = c.FinalScore
			}
		}
		meanSum += sum / float64(len(cands))
		peakSum += max
		parts++
	}

	if parts == 0 {
		return Confidence{}
	}
	return Confidence{
		ConsistencyScore:   round1(meanSum / float64(parts)),
		PeakRelevanceScore: round1(peakSum / float64(parts)),
	}
}
