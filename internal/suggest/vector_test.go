package suggest

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0.0 {
		t.Fatalf("orthogonal vectors: got %v", got)
	}
	if got := CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}); math.Abs(got-1.0) > 1e-6 {
		t.Fatalf("identical vectors: got %v", got)
	}
	if got := CosineSimilarity([]float32{0, 0}, []float32{1, 1}); got != 0.0 {
		t.Fatalf("zero vector: got %v", got)
	}
	if got := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}); got != 0.0 {
		t.Fatalf("mismatched dimensions: got %v", got)
	}
	if got := CosineSimilarity(nil, nil); got != 0.0 {
		t.Fatalf("nil vectors: got %v", got)
	}
}

func TestBuildEmbeddingPrefixAndCentroid(t *testing.T) {
	segments := []Segment{
		{Embedding: []float32{1, 0}},
		{Embedding: []float32{0, 1}},
		{Embedding: []float32{1, 1}},
	}
	prefix := BuildEmbeddingPrefix(segments)
	if prefix == nil {
		t.Fatalf("expected prefix")
	}
	if len(prefix) != 4 {
		t.Fatalf("expected len 4, got %d", len(prefix))
	}

	centroid := CandidateEmbedding(prefix, 0, 1)
	if centroid[0] != 0.5 || centroid[1] != 0.5 {
		t.Fatalf("centroid [0,1]: got %v", centroid)
	}
	centroid = CandidateEmbedding(prefix, 1, 2)
	if centroid[0] != 0.5 || centroid[1] != 1.0 {
		t.Fatalf("centroid [1,2]: got %v", centroid)
	}
	centroid = CandidateEmbedding(prefix, 2, 2)
	if centroid[0] != 1.0 || centroid[1] != 1.0 {
		t.Fatalf("centroid [2,2]: got %v", centroid)
	}
}

func TestBuildEmbeddingPrefixMissingEmbedding(t *testing.T) {
	segments := []Segment{
		{Embedding: []float32{1, 0}},
		{},
	}
	if prefix := BuildEmbeddingPrefix(segments); prefix != nil {
		t.Fatalf("expected nil prefix when any segment lacks an embedding")
	}
}

func TestCandidateEmbeddingOutOfRange(t *testing.T) {
	segments := []Segment{{Embedding: []float32{1, 0}}}
	prefix := BuildEmbeddingPrefix(segments)
	if got := CandidateEmbedding(prefix, 0, 5); got != nil {
		t.Fatalf("expected nil for out-of-range window, got %v", got)
	}
	if got := CandidateEmbedding(nil, 0, 0); got != nil {
		t.Fatalf("expected nil for nil prefix, got %v", got)
	}
}
