package suggest

import (
	"strings"
)

// BuildCandidates enumerates every contiguous segment run inside each
// breakpoint window whose duration lands in [MinClipMS, MaxClipMS]. With
// strictEnd set, runs that do not close cleanly are skipped. Accumulated
// internal silence only counts gaps above LongGapMS.
func BuildCandidates(segments []Segment, strictEnd bool, breakpoints []int) []Candidate {
	var candidates []Candidate
	total := len(segments)
	if len(breakpoints) == 0 {
		breakpoints = []int{0, total}
	}
	for w := 0; w+1 < len(breakpoints); w++ {
		windowStart, windowEnd := breakpoints[w], breakpoints[w+1]
		if windowStart >= windowEnd {
			continue
		}
		for startIdx := windowStart; startIdx < windowEnd; startIdx++ {
			startSeg := segments[startIdx]
			startMS := startSeg.StartMS

			prevGapMS := 0
			hasPrev := startIdx > 0
			if hasPrev {
				prevGapMS = startMS - segments[startIdx-1].EndMS
				if prevGapMS < 0 {
					prevGapMS = 0
				}
			}
			startClean := isCleanStart(prevGapMS, hasPrev, startSeg.Text)

			var textParts []string
			gapMS := 0
			prevEnd := startSeg.EndMS
			for endIdx := startIdx; endIdx < windowEnd; endIdx++ {
				seg := segments[endIdx]
				if endIdx > startIdx {
					gap := seg.StartMS - prevEnd
					if gap < 0 {
						gap = 0
					}
					if gap > LongGapMS {
						gapMS += gap
					}
					prevEnd = seg.EndMS
				}
				textParts = append(textParts, seg.Text)
				endMS := seg.EndMS
				duration := endMS - startMS
				if duration < MinClipMS {
					continue
				}
				if duration > MaxClipMS {
					break
				}
				text := strings.TrimSpace(strings.Join(textParts, " "))
				if text == "" {
					continue
				}

				nextGapMS := 0
				hasNext := endIdx+1 < total
				if hasNext {
					nextGapMS = segments[endIdx+1].StartMS - seg.EndMS
					if nextGapMS < 0 {
						nextGapMS = 0
					}
				}
				endClean := isCleanEnd(nextGapMS, hasNext, seg.Text)
				if strictEnd && !endClean {
					continue
				}

				score, rationale, hook := scoreCandidate(text, gapMS, startClean, endClean)
				candidates = append(candidates, Candidate{
					StartMS:            startMS,
					EndMS:              endMS,
					StartIdx:           startIdx,
					EndIdx:             endIdx,
					Text:               text,
					HeuristicScore:     score,
					HeuristicRationale: rationale,
					HookScore:          hook,
					GapMS:              gapMS,
					StartClean:         startClean,
					EndClean:           endClean,
				})
			}
		}
	}
	return candidates
}

// GenerateCandidates runs the relaxation ladder: strict ends within semantic
// windows, then loose ends, then the same pair over the whole transcript when
// the windows were actually partitioning anything. Returns ErrNoCandidates
// when every pass comes up empty.
func GenerateCandidates(segments []Segment, breakpoints []int) ([]Candidate, error) {
	candidates := BuildCandidates(segments, true, breakpoints)
	if len(candidates) == 0 {
		candidates = BuildCandidates(segments, false, breakpoints)
	}
	if len(candidates) == 0 && !IsFullWindow(breakpoints, len(segments)) {
		full := []int{0, len(segments)}
		candidates = BuildCandidates(segments, true, full)
		if len(candidates) == 0 {
			candidates = BuildCandidates(segments, false, full)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	return candidates, nil
}
