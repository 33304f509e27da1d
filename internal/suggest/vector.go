package suggest

import (
	"math"
)

// CosineSimilarity returns 0 for degenerate vectors (zero norm or mismatched
// dimensions) rather than erroring; callers treat that as "no signal".
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom <= 1e-8 {
		return 0.0
	}
	return dot / denom
}

// BuildEmbeddingPrefix returns cumulative sums of the segment embeddings:
// prefix[i] is the elementwise sum of embeddings [0, i). Candidate centroids
// become O(1) lookups. Returns nil unless every segment carries an embedding
// of the same dimension.
func BuildEmbeddingPrefix(segments []Segment) [][]float32 {
	if len(segments) == 0 {
		return nil
	}
	dim := len(segments[0].Embedding)
	if dim == 0 {
		return nil
	}
	prefix := make([][]float32, len(segments)+1)
	prefix[0] = make([]float32, dim)
	for i, seg := range segments {
		if len(seg.Embedding) != dim {
			return nil
		}
		row := make([]float32, dim)
		for j := range row {
			row[j] = prefix[i][j] + seg.Embedding[j]
		}
		prefix[i+1] = row
	}
	return prefix
}

// CandidateEmbedding computes the centroid of segments [startIdx, endIdx]
// from a prefix built by BuildEmbeddingPrefix.
func CandidateEmbedding(prefix [][]float32, startIdx, endIdx int) []float32 {
	if prefix == nil {
		return nil
	}
	if startIdx < 0 || endIdx+1 >= len(prefix) || endIdx < startIdx {
		return nil
	}
	count := float32(endIdx - startIdx + 1)
	dim := len(prefix[0])
	centroid := make([]float32, dim)
	for j := 0; j < dim; j++ {
		centroid[j] = (prefix[endIdx+1][j] - prefix[startIdx][j]) / count
	}
	return centroid
}
