package suggest

import (
	"fmt"
)

// TypeVector pairs a rhetorical segment type with its reference embedding.
// The slice form keeps classification order deterministic.
type TypeVector struct {
	Name      string
	Embedding []float32
}

// TypeExample holds the prototype sentence embedded once per process to
// produce the reference vector for a segment type.
type TypeExample struct {
	Name string
	Text string
}

// TypeExamples are the prototype sentences for each rhetorical type, in the
// order classification iterates them.
var TypeExamples = []TypeExample{
	{Name: "exposition", Text: "En este pasaje, Pablo explica..."},
	{Name: "illustration", Text: "Hace unos anos conoci a..."},
	{Name: "application", Text: "Entonces, que significa esto para ti?"},
	{Name: "conclusion", Text: "En resumen, hemos visto que..."},
}

var typeScores = map[string]float64{
	"application":  1.5,
	"illustration": 1.2,
	"conclusion":   1.0,
	"exposition":   0.7,
}

// ScoreByType returns the multiplier for a segment type, defaulting to 1.0
// for unknown types.
func ScoreByType(segmentType string) float64 {
	if s, ok := typeScores[segmentType]; ok {
		return s
	}
	return 1.0
}

// ClassifySegmentType picks the reference type whose embedding is most
// similar to the candidate centroid. Falls back to exposition when nothing
// beats the initial similarity floor.
func ClassifySegmentType(embedding []float32, refs []TypeVector) (string, float64) {
	bestType := "exposition"
	bestSim := -1.0
	for _, ref := range refs {
		sim := CosineSimilarity(embedding, ref.Embedding)
		if sim > bestSim {
			bestSim = sim
			bestType = ref.Name
		}
	}
	return bestType, bestSim
}

// AttachEmbeddings computes and stores the centroid embedding of every
// candidate. Candidates whose centroid cannot be computed keep a nil one.
// This runs whenever the stored segment embeddings are complete, so the
// centroid dedupe works even when type classification is unavailable.
func AttachEmbeddings(candidates []Candidate, prefix [][]float32) {
	if prefix == nil {
		return
	}
	for i := range candidates {
		c := &candidates[i]
		c.Embedding = CandidateEmbedding(prefix, c.StartIdx, c.EndIdx)
	}
}

// ApplySemanticScoring attaches a centroid embedding to each candidate,
// classifies its rhetorical type and multiplies the heuristic score by the
// type multiplier. Candidates whose centroid cannot be computed are left
// untouched.
func ApplySemanticScoring(candidates []Candidate, prefix [][]float32, refs []TypeVector) {
	if len(candidates) == 0 || prefix == nil || len(refs) == 0 {
		return
	}
	for i := range candidates {
		c := &candidates[i]
		embedding := c.Embedding
		if embedding == nil {
			embedding = CandidateEmbedding(prefix, c.StartIdx, c.EndIdx)
		}
		if embedding == nil {
			continue
		}
		c.Embedding = embedding
		segmentType, similarity := ClassifySegmentType(embedding, refs)
		c.SegmentType = segmentType
		c.TypeScore = ScoreByType(segmentType)
		c.TypeSimilarity = similarity
		c.HeuristicScore *= c.TypeScore
		c.HeuristicRationale += fmt.Sprintf("; type=%s", segmentType)
	}
}

// SemanticDedupe drops candidates whose centroid is near-identical (cosine
// >= SemanticDedupeSimilarity) to an already kept one. Only the first
// SemanticDedupeMax entries are compared; the remainder passes through, as
// does any candidate without a centroid.
func SemanticDedupe(candidates []Candidate) []Candidate {
	if len(candidates) == 0 {
		return nil
	}
	selected := make([]Candidate, 0, len(candidates))
	var selectedEmbeddings [][]float32
	for index, candidate := range candidates {
		if index >= SemanticDedupeMax {
			selected = append(selected, candidates[index:]...)
			break
		}
		if candidate.Embedding == nil {
			selected = append(selected, candidate)
			continue
		}
		duplicate := false
		for _, chosen := range selectedEmbeddings {
			if CosineSimilarity(candidate.Embedding, chosen) >= SemanticDedupeSimilarity {
				duplicate = true
				break
			}
		}
		if !duplicate {
			selected = append(selected, candidate)
			selectedEmbeddings = append(selectedEmbeddings, candidate.Embedding)
		}
	}
	return selected
}
