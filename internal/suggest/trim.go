package suggest

import (
	"math"
)

// ApplyTrimSuggestions tightens candidate bounds using LLM trim proposals.
// A trim is only applied when its confidence clears TrimConfidenceMin, the
// offsets are sane, the tightened bounds snap onto real segment boundaries
// within the original run, and the snapped duration still fits
// [MinClipMS, MaxClipMS]. Anything else leaves the candidate unchanged with
// TrimApplied false.
func ApplyTrimSuggestions(candidates []Candidate, segments []Segment) {
	total := len(segments)
	for i := range candidates {
		c := &candidates[i]
		trim := c.LLMTrim
		if trim == nil {
			continue
		}
		if c.LLMTrimConfidence == nil {
			c.TrimApplied = false
			continue
		}
		if *c.LLMTrimConfidence < TrimConfidenceMin {
			c.TrimApplied = false
			continue
		}

		startOffsetSec := math.Max(0.0, trim.StartOffsetSec)
		endOffsetSec := math.Abs(trim.EndOffsetSec)
		if startOffsetSec <= 0 && endOffsetSec <= 0 {
			continue
		}
		if c.StartIdx < 0 || c.EndIdx >= total || c.StartIdx > c.EndIdx {
			continue
		}

		newStartMS := c.StartMS + int(math.Round(startOffsetSec*1000))
		newEndMS := c.EndMS - int(math.Round(endOffsetSec*1000))
		if newEndMS <= newStartMS {
			continue
		}

		newStartIdx := -1
		for idx := c.StartIdx; idx <= c.EndIdx; idx++ {
			if segments[idx].EndMS >= newStartMS {
				newStartIdx = idx
				break
			}
		}
		if newStartIdx < 0 {
			continue
		}

		newEndIdx := -1
		for idx := c.EndIdx; idx >= newStartIdx; idx-- {
			if segments[idx].StartMS <= newEndMS {
				newEndIdx = idx
				break
			}
		}
		if newEndIdx < 0 || newEndIdx < newStartIdx {
			continue
		}

		adjustedStartMS := segments[newStartIdx].StartMS
		adjustedEndMS := segments[newEndIdx].EndMS
		durationMS := adjustedEndMS - adjustedStartMS
		if durationMS < MinClipMS || durationMS > MaxClipMS {
			continue
		}

		c.StartMS = adjustedStartMS
		c.EndMS = adjustedEndMS
		c.StartIdx = newStartIdx
		c.EndIdx = newEndIdx
		c.TrimApplied = true
	}
}
