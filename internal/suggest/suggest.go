// Package suggest implements the clip suggestion pipeline: candidate
// enumeration over a timestamped transcript, heuristic and semantic scoring,
// LLM score fusion, trim snapping, and deduplication. Everything here is pure
// over its inputs; persistence and transport live in the services layer.
package suggest

import (
	"errors"
)

const (
	MinClipMS      = 30_000
	MaxClipMS      = 120_000
	MinSuggestions = 5
	MaxSuggestions = 15

	// Boundary cleanliness thresholds (inter-segment silence, ms).
	LongGapMS  = 1500
	StartGapMS = 500
	EndGapMS   = 700

	hookHeadChars  = 150
	hookMinScore   = 0.30
	hookBonusScale = 1.5

	SemanticBreakpointSimilarity = 0.5
	SemanticDedupeSimilarity     = 0.86
	SemanticDedupeMax            = 200
	SemanticTypeMax              = 200

	HeuristicScoreWeight = 0.3
	LLMScoreWeight       = 0.7
	LLMMaxCandidates     = 15
	TrimConfidenceMin    = 0.8

	OverlapRatioMax = 0.6
)

var ErrNoCandidates = errors.New("no candidate clips generated")

// Segment is the pipeline's view of a transcript segment. Embedding is nil
// when the segment has no stored vector; the pipeline degrades gracefully.
type Segment struct {
	ID        int64
	StartMS   int
	EndMS     int
	Text      string
	Embedding []float32
}

// TrimSuggestion is a small inward adjustment of a candidate's bounds
// proposed by the LLM. Offsets are seconds to cut from each end.
type TrimSuggestion struct {
	StartOffsetSec float64 `json:"start_offset_sec"`
	EndOffsetSec   float64 `json:"end_offset_sec"`
	Confidence     float64 `json:"confidence"`
}

// Candidate is a proposed clip over a contiguous run of segments. It is
// transient: only the surviving candidates become Clip rows.
type Candidate struct {
	StartMS  int
	EndMS    int
	StartIdx int
	EndIdx   int
	Text     string

	HeuristicScore     float64
	HeuristicRationale string
	HeuristicScaled    float64
	HookScore          float64
	GapMS              int
	StartClean         bool
	EndClean           bool

	Embedding      []float32
	SegmentType    string
	TypeScore      float64
	TypeSimilarity float64

	CandidateID       string
	ApproxDurationSec int
	LLMScore          float64
	LLMReason         string
	LLMTrim           *TrimSuggestion
	LLMTrimConfidence *float64
	TrimApplied       bool

	Score     float64
	Rationale string
	UseLLM    bool
}

func (c *Candidate) DurationMS() int {
	return c.EndMS - c.StartMS
}
