package suggest

// FindBreakpoints returns segment indices that partition the transcript into
// topical windows. A boundary opens before segment i when the silence gap
// from segment i-1 exceeds LongGapMS, or when both segments carry embeddings
// and their cosine similarity falls below SemanticBreakpointSimilarity.
// The result always starts at 0 and ends at len(segments), with duplicates
// collapsed.
func FindBreakpoints(segments []Segment) []int {
	if len(segments) == 0 {
		return []int{0}
	}
	breakpoints := []int{0}
	for i := 1; i < len(segments); i++ {
		prev := segments[i-1]
		curr := segments[i]
		gap := curr.StartMS - prev.EndMS
		if gap > LongGapMS {
			breakpoints = append(breakpoints, i)
			continue
		}
		if prev.Embedding != nil && curr.Embedding != nil {
			if CosineSimilarity(prev.Embedding, curr.Embedding) < SemanticBreakpointSimilarity {
				breakpoints = append(breakpoints, i)
			}
		}
	}
	breakpoints = append(breakpoints, len(segments))

	cleaned := breakpoints[:0]
	last := -1
	for _, idx := range breakpoints {
		if idx != last {
			cleaned = append(cleaned, idx)
			last = idx
		}
	}
	return cleaned
}

// IsFullWindow reports whether the breakpoint list degenerates to a single
// window covering the whole transcript, in which case the full-window
// fallback passes would repeat work and are skipped.
func IsFullWindow(breakpoints []int, totalSegments int) bool {
	return len(breakpoints) == 2 && breakpoints[0] == 0 && breakpoints[1] == totalSegments
}
