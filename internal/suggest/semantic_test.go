package suggest

import (
	"strings"
	"testing"
)

func testTypeVectors() []TypeVector {
	return []TypeVector{
		{Name: "exposition", Embedding: []float32{0, 1}},
		{Name: "application", Embedding: []float32{1, 0}},
	}
}

func TestClassifySegmentType(t *testing.T) {
	name, sim := ClassifySegmentType([]float32{1, 0.1}, testTypeVectors())
	if name != "application" {
		t.Fatalf("expected application, got %s", name)
	}
	if sim <= 0.9 {
		t.Fatalf("expected high similarity, got %v", sim)
	}
}

func TestClassifySegmentTypeDefaultsToExposition(t *testing.T) {
	name, _ := ClassifySegmentType([]float32{1, 1}, nil)
	if name != "exposition" {
		t.Fatalf("expected exposition default, got %s", name)
	}
}

func TestScoreByType(t *testing.T) {
	if ScoreByType("application") != 1.5 {
		t.Fatalf("application multiplier wrong")
	}
	if ScoreByType("exposition") != 0.7 {
		t.Fatalf("exposition multiplier wrong")
	}
	if ScoreByType("unknown") != 1.0 {
		t.Fatalf("unknown types must default to 1.0")
	}
}

func TestApplySemanticScoring(t *testing.T) {
	segments := []Segment{
		{Embedding: []float32{1, 0}},
		{Embedding: []float32{1, 0}},
	}
	prefix := BuildEmbeddingPrefix(segments)
	candidates := []Candidate{
		{StartIdx: 0, EndIdx: 1, HeuristicScore: 2.0, HeuristicRationale: "base"},
	}
	ApplySemanticScoring(candidates, prefix, testTypeVectors())

	c := candidates[0]
	if c.SegmentType != "application" {
		t.Fatalf("expected application, got %s", c.SegmentType)
	}
	if c.HeuristicScore != 3.0 {
		t.Fatalf("expected 2.0 * 1.5 = 3.0, got %v", c.HeuristicScore)
	}
	if !strings.HasSuffix(c.HeuristicRationale, "; type=application") {
		t.Fatalf("rationale missing type suffix: %q", c.HeuristicRationale)
	}
	if c.Embedding == nil {
		t.Fatalf("centroid embedding should be attached")
	}
}

func TestAttachEmbeddings(t *testing.T) {
	segments := []Segment{
		{Embedding: []float32{1, 0}},
		{Embedding: []float32{0, 1}},
	}
	prefix := BuildEmbeddingPrefix(segments)
	candidates := []Candidate{
		{StartIdx: 0, EndIdx: 1},
		{StartIdx: 0, EndIdx: 5}, // out of range, stays nil
	}
	AttachEmbeddings(candidates, prefix)
	if candidates[0].Embedding == nil {
		t.Fatalf("centroid must be attached without type vectors")
	}
	if candidates[1].Embedding != nil {
		t.Fatalf("out-of-range candidate must keep a nil centroid")
	}

	AttachEmbeddings(candidates, nil)
	if candidates[0].Embedding == nil {
		t.Fatalf("nil prefix must leave candidates untouched")
	}
}

func TestApplySemanticScoringNilPrefix(t *testing.T) {
	candidates := []Candidate{{StartIdx: 0, EndIdx: 0, HeuristicScore: 2.0}}
	ApplySemanticScoring(candidates, nil, testTypeVectors())
	if candidates[0].HeuristicScore != 2.0 || candidates[0].SegmentType != "" {
		t.Fatalf("nil prefix must leave candidates untouched")
	}
}

func TestSemanticDedupe(t *testing.T) {
	candidates := []Candidate{
		{StartMS: 0, Embedding: []float32{1, 0}},
		{StartMS: 1, Embedding: []float32{1, 0.01}},
		{StartMS: 2, Embedding: []float32{0, 1}},
		{StartMS: 3},
	}
	got := SemanticDedupe(candidates)
	if len(got) != 3 {
		t.Fatalf("expected 3 survivors, got %d", len(got))
	}
	if got[0].StartMS != 0 || got[1].StartMS != 2 || got[2].StartMS != 3 {
		t.Fatalf("unexpected survivors: %+v", got)
	}
}

func TestSemanticDedupeEmpty(t *testing.T) {
	if got := SemanticDedupe(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
