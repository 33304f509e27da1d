package suggest

// OverlapRatio measures the shared span of two intervals relative to the
// shorter one. Degenerate intervals score 0.
func OverlapRatio(aStart, aEnd, bStart, bEnd int) float64 {
	overlap := min(aEnd, bEnd) - max(aStart, bStart)
	if overlap <= 0 {
		return 0.0
	}
	aLen := aEnd - aStart
	bLen := bEnd - bStart
	if aLen <= 0 || bLen <= 0 {
		return 0.0
	}
	shorter := aLen
	if bLen < shorter {
		shorter = bLen
	}
	return float64(overlap) / float64(shorter)
}

// DedupeOverlapping keeps candidates in order, dropping any that overlaps a
// kept one by more than OverlapRatioMax. Callers sort by score first so the
// better of two overlapping clips survives.
func DedupeOverlapping(candidates []Candidate) []Candidate {
	selected := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		duplicate := false
		for _, chosen := range selected {
			ratio := OverlapRatio(candidate.StartMS, candidate.EndMS, chosen.StartMS, chosen.EndMS)
			if ratio > OverlapRatioMax {
				duplicate = true
				break
			}
		}
		if !duplicate {
			selected = append(selected, candidate)
		}
	}
	return selected
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
