package suggest

import (
	"fmt"
	"math"
	"sort"
)

// scoreCandidate computes the raw heuristic score. Density rewards longer
// runs, hooks and clean boundaries push the clip up, thin text and internal
// silence pull it down. Returns (score, rationale, hook score).
func scoreCandidate(text string, gapMS int, startClean, endClean bool) (float64, string, float64) {
	wordCount := countWords(text)

	textPenalty := 0.0
	switch {
	case wordCount < 8:
		textPenalty = 2.0
	case wordCount < 15:
		textPenalty = 1.0
	}
	gapPenalty := math.Min(2.0, float64(gapMS)/3000.0)

	hook, _ := hookScore(text)
	hookBonus := hookBonusScale * hook

	startBonus := -0.3
	if startClean {
		startBonus = 0.3
	}
	endBonus := -0.6
	if endClean {
		endBonus = 0.6
	}

	score := float64(wordCount)/10.0 + hookBonus + startBonus + endBonus - textPenalty - gapPenalty

	boundary := func(clean bool) string {
		if clean {
			return "clean"
		}
		return "rough"
	}
	rationale := fmt.Sprintf(
		"words=%d; gaps_ms=%d; hook=%.2f; start=%s; end=%s",
		wordCount, gapMS, hook, boundary(startClean), boundary(endClean),
	)
	return score, rationale, hook
}

// ScaleHeuristicScores min-max normalises the raw heuristic scores onto
// [0, 100] so they fuse with LLM scores on a shared scale. When all raw
// scores are effectively equal everyone gets 50.
func ScaleHeuristicScores(candidates []Candidate) {
	if len(candidates) == 0 {
		return
	}
	minScore := candidates[0].HeuristicScore
	maxScore := candidates[0].HeuristicScore
	for _, c := range candidates[1:] {
		if c.HeuristicScore < minScore {
			minScore = c.HeuristicScore
		}
		if c.HeuristicScore > maxScore {
			maxScore = c.HeuristicScore
		}
	}
	if math.Abs(maxScore-minScore) < 1e-6 {
		for i := range candidates {
			candidates[i].HeuristicScaled = 50.0
		}
		return
	}
	for i := range candidates {
		candidates[i].HeuristicScaled = (candidates[i].HeuristicScore - minScore) / (maxScore - minScore) * 100.0
	}
}

// FuseScores sets the final score and rationale after a successful LLM pass:
// weighted blend of the scaled heuristic and LLM scores, LLM reason winning
// the rationale when present.
func FuseScores(candidates []Candidate) {
	for i := range candidates {
		c := &candidates[i]
		c.Score = HeuristicScoreWeight*c.HeuristicScaled + LLMScoreWeight*c.LLMScore
		if c.LLMReason != "" {
			c.Rationale = c.LLMReason
		} else {
			c.Rationale = c.HeuristicRationale
		}
		c.UseLLM = true
	}
}

// ApplyHeuristicScores sets the final score and rationale on the pure
// heuristic path (LLM disabled or unavailable).
func ApplyHeuristicScores(candidates []Candidate) {
	for i := range candidates {
		c := &candidates[i]
		c.Score = c.HeuristicScore
		c.Rationale = c.HeuristicRationale
		c.UseLLM = false
		c.LLMTrim = nil
		c.LLMTrimConfidence = nil
		c.TrimApplied = false
	}
}

// SortByScore orders candidates by final score descending, breaking ties on
// start_ms then end_ms ascending so output order is deterministic.
func SortByScore(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].StartMS != candidates[j].StartMS {
			return candidates[i].StartMS < candidates[j].StartMS
		}
		return candidates[i].EndMS < candidates[j].EndMS
	})
}

// SortByHeuristicScore orders candidates by raw heuristic score descending
// with the same positional tie-break as SortByScore.
func SortByHeuristicScore(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].HeuristicScore != candidates[j].HeuristicScore {
			return candidates[i].HeuristicScore > candidates[j].HeuristicScore
		}
		if candidates[i].StartMS != candidates[j].StartMS {
			return candidates[i].StartMS < candidates[j].StartMS
		}
		return candidates[i].EndMS < candidates[j].EndMS
	})
}
