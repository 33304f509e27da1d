package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/yungbote/sermonclips-backend/internal/clients/deepseek"
	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/suggest"
	"github.com/yungbote/sermonclips-backend/internal/types"
)

const testSermonID = int64(7)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

const segmentText = "La palabra de Dios transforma vidas cada dia sin excepcion alguna."

// twoWindowSegments builds two 60s blocks of six 10s segments separated by a
// 2s pause, which partitions into two breakpoint windows.
func twoWindowSegments() []*types.TranscriptSegment {
	var segments []*types.TranscriptSegment
	id := int64(1)
	base := 0
	for w := 0; w < 2; w++ {
		for i := 0; i < 6; i++ {
			segments = append(segments, &types.TranscriptSegment{
				ID:       id,
				SermonID: testSermonID,
				StartMS:  base + i*10_000,
				EndMS:    base + (i+1)*10_000,
				Text:     segmentText,
			})
			id++
		}
		base += 62_000
	}
	return segments
}

type suggestionFixture struct {
	svc      *suggestionService
	sermons  *fakeSermonRepo
	clips    *fakeClipRepo
	llm      *fakeLLM
	segments *fakeSegmentRepo
	embRepo  *fakeEmbeddingRepo
}

func newSuggestionFixture(t *testing.T, useLLM bool) *suggestionFixture {
	t.Helper()
	sermons := &fakeSermonRepo{sermon: &types.Sermon{ID: testSermonID, Status: types.SermonStatusTranscribed}}
	segments := &fakeSegmentRepo{segments: twoWindowSegments()}
	embRepo := &fakeEmbeddingRepo{}
	clips := &fakeClipRepo{}
	llm := &fakeLLM{fn: func(candidates []deepseek.Candidate) (*deepseek.ScoreResult, error) {
		return nil, &deepseek.ClientError{Msg: "not configured"}
	}}
	svc := &suggestionService{
		log:           testLogger(t),
		txr:           fakeTxRunner{},
		sermons:       sermons,
		segments:      segments,
		embeddings:    embRepo,
		clips:         clips,
		llm:           llm,
		useLLMDefault: useLLM,
		now:           func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) },
	}
	return &suggestionFixture{svc: svc, sermons: sermons, clips: clips, llm: llm, segments: segments, embRepo: embRepo}
}

func TestSuggestClipsHeuristicOnly(t *testing.T) {
	fx := newSuggestionFixture(t, false)
	// A pre-existing auto suggestion from an earlier run.
	old := &types.Clip{ID: 100, SermonID: testSermonID, StartMS: 0, EndMS: 40_000, Source: types.ClipSourceAuto}
	fx.clips.clips = append(fx.clips.clips, old)

	result, err := fx.svc.SuggestClips(context.Background(), testSermonID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "ok" || result.LLMUsed {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Suggestions != 2 {
		t.Fatalf("expected one clip per window, got %d", result.Suggestions)
	}

	if old.DeletedAt == nil {
		t.Fatalf("previous auto suggestions must be soft-deleted")
	}
	if !old.DeletedAt.Equal(old.UpdatedAt) {
		t.Fatalf("soft delete must stamp deleted_at == updated_at")
	}

	live := fx.clips.live(testSermonID)
	if len(live) != 2 {
		t.Fatalf("expected 2 live clips, got %d", len(live))
	}
	first, second := live[0], live[1]
	if first.StartMS != 0 || first.EndMS != 60_000 {
		t.Fatalf("unexpected first clip bounds [%d,%d]", first.StartMS, first.EndMS)
	}
	if second.StartMS != 62_000 || second.EndMS != 122_000 {
		t.Fatalf("unexpected second clip bounds [%d,%d]", second.StartMS, second.EndMS)
	}
	for _, clip := range live {
		if clip.Source != types.ClipSourceAuto || clip.Status != types.ClipStatusPending {
			t.Fatalf("new suggestions must be auto/pending: %+v", clip)
		}
		if clip.UseLLM || clip.LLMTrim != nil || clip.TrimApplied {
			t.Fatalf("heuristic path must not carry LLM state: %+v", clip)
		}
		if clip.Score == nil || clip.Rationale == nil || *clip.Rationale == "" {
			t.Fatalf("score and rationale are required: %+v", clip)
		}
	}

	if fx.sermons.sermon.Status != types.SermonStatusSuggested {
		t.Fatalf("sermon status must become suggested, got %s", fx.sermons.sermon.Status)
	}
	if fx.llm.calls != 0 {
		t.Fatalf("LLM must not be called when disabled")
	}
}

func TestSuggestClipsDeletedSermon(t *testing.T) {
	fx := newSuggestionFixture(t, false)
	now := time.Now()
	fx.sermons.sermon.DeletedAt = &now

	result, err := fx.svc.SuggestClips(context.Background(), testSermonID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusDeleted {
		t.Fatalf("expected deleted status, got %s", result.Status)
	}
	if len(fx.clips.clips) != 0 {
		t.Fatalf("no clips must be written for a deleted sermon")
	}
}

func TestSuggestClipsSermonNotFound(t *testing.T) {
	fx := newSuggestionFixture(t, false)
	_, err := fx.svc.SuggestClips(context.Background(), 999, nil)
	if !errors.Is(err, ErrSermonNotFound) {
		t.Fatalf("expected ErrSermonNotFound, got %v", err)
	}
}

func TestSuggestClipsNoSegments(t *testing.T) {
	fx := newSuggestionFixture(t, false)
	fx.segments.segments = nil
	_, err := fx.svc.SuggestClips(context.Background(), testSermonID, nil)
	if !errors.Is(err, ErrNoSegments) {
		t.Fatalf("expected ErrNoSegments, got %v", err)
	}
}

func TestSuggestClipsDeletedMidRun(t *testing.T) {
	fx := newSuggestionFixture(t, false)
	old := &types.Clip{ID: 100, SermonID: testSermonID, StartMS: 0, EndMS: 40_000, Source: types.ClipSourceAuto}
	fx.clips.clips = append(fx.clips.clips, old)
	// First GetByID (pre-flight) sees the sermon live; the re-read inside the
	// write transaction sees it deleted.
	fx.sermons.deleteAfter = 1

	result, err := fx.svc.SuggestClips(context.Background(), testSermonID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusDeleted {
		t.Fatalf("expected deleted status, got %s", result.Status)
	}
	if old.DeletedAt != nil {
		t.Fatalf("existing suggestions must survive when the sermon vanished mid-run")
	}
	if len(fx.clips.live(testSermonID)) != 1 {
		t.Fatalf("no new clips must be written")
	}
}

func TestSuggestClipsLLMPath(t *testing.T) {
	fx := newSuggestionFixture(t, true)
	fx.llm.fn = func(candidates []deepseek.Candidate) (*deepseek.ScoreResult, error) {
		clips := make([]deepseek.ScoredClip, 0, len(candidates))
		for _, c := range candidates {
			clips = append(clips, deepseek.ScoredClip{ID: c.ID, Score: 80, Reason: "razon llm"})
		}
		return &deepseek.ScoreResult{
			Clips:      clips,
			TokenUsage: deepseek.TokenUsage{PromptTokens: 100, CompletionTokens: 40, TotalTokens: 140},
		}, nil
	}

	result, err := fx.svc.SuggestClips(context.Background(), testSermonID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.LLMUsed {
		t.Fatalf("expected LLM path")
	}
	if result.TokenUsage == nil || result.TokenUsage.TotalTokens != 140 {
		t.Fatalf("token usage must be propagated: %+v", result.TokenUsage)
	}
	if fx.llm.calls != 1 {
		t.Fatalf("expected one LLM call, got %d", fx.llm.calls)
	}
	if len(fx.llm.lastPayload) == 0 || len(fx.llm.lastPayload) > suggest.LLMMaxCandidates {
		t.Fatalf("payload size out of bounds: %d", len(fx.llm.lastPayload))
	}
	for _, cand := range fx.llm.lastPayload {
		if cand.ID == "" || cand.Text == "" || cand.ApproxDurationSec < 30 {
			t.Fatalf("malformed payload candidate: %+v", cand)
		}
	}

	for _, clip := range fx.clips.live(testSermonID) {
		if !clip.UseLLM {
			t.Fatalf("clips must be marked use_llm")
		}
		if clip.Rationale == nil || *clip.Rationale != "razon llm" {
			t.Fatalf("LLM reason must win the rationale: %+v", clip.Rationale)
		}
		if clip.Score == nil || *clip.Score < 0 || *clip.Score > 100 {
			t.Fatalf("fused score out of range: %v", clip.Score)
		}
		if clip.LLMTokenUsage == nil {
			t.Fatalf("token usage must be stored on LLM-scored clips")
		}
	}
}

func TestSuggestClipsLLMIncompleteFallsBack(t *testing.T) {
	fx := newSuggestionFixture(t, true)
	fx.llm.fn = func(candidates []deepseek.Candidate) (*deepseek.ScoreResult, error) {
		return &deepseek.ScoreResult{
			Clips: []deepseek.ScoredClip{{ID: candidates[0].ID, Score: 90}},
		}, nil
	}

	result, err := fx.svc.SuggestClips(context.Background(), testSermonID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.LLMUsed {
		t.Fatalf("incomplete LLM results must fall back to heuristics")
	}
	for _, clip := range fx.clips.live(testSermonID) {
		if clip.UseLLM {
			t.Fatalf("fallback clips must not be marked use_llm")
		}
	}
}

func TestSuggestClipsLLMErrorFallsBack(t *testing.T) {
	fx := newSuggestionFixture(t, true)

	result, err := fx.svc.SuggestClips(context.Background(), testSermonID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.LLMUsed {
		t.Fatalf("client errors must fall back to heuristics")
	}
	if result.Suggestions != 2 {
		t.Fatalf("heuristic fallback still produces suggestions, got %d", result.Suggestions)
	}
}

func TestSuggestClipsUseLLMOverride(t *testing.T) {
	fx := newSuggestionFixture(t, true)
	override := false
	result, err := fx.svc.SuggestClips(context.Background(), testSermonID, &override)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fx.llm.calls != 0 {
		t.Fatalf("override=false must skip the LLM entirely")
	}
	if result.LLMUsed {
		t.Fatalf("unexpected LLM usage")
	}
}

func TestSuggestClipsSemanticScoring(t *testing.T) {
	fx := newSuggestionFixture(t, false)
	storeIdenticalEmbeddings(fx)
	fx.svc.embedder = &fakeEmbedder{dim: 2, fn: func(inputs []string) ([][]float32, error) {
		// exposition, illustration, application, conclusion
		return [][]float32{{0, 1}, {0.5, 0.5}, {1, 0}, {-1, 0}}, nil
	}}

	result, err := fx.svc.SuggestClips(context.Background(), testSermonID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// All centroids are identical, so semantic dedupe keeps a single clip.
	if result.Suggestions != 1 {
		t.Fatalf("expected semantic dedupe to one clip, got %d", result.Suggestions)
	}
	live := fx.clips.live(testSermonID)
	if len(live) != 1 {
		t.Fatalf("expected 1 live clip, got %d", len(live))
	}
	if !strings.Contains(*live[0].Rationale, "type=application") {
		t.Fatalf("rationale must carry the classified type: %q", *live[0].Rationale)
	}
}

func storeIdenticalEmbeddings(fx *suggestionFixture) {
	for _, seg := range fx.segments.segments {
		fx.embRepo.rows = append(fx.embRepo.rows, &types.TranscriptEmbedding{
			ID:        seg.ID,
			SermonID:  testSermonID,
			SegmentID: seg.ID,
			Text:      seg.Text,
			Embedding: pgvector.NewVector([]float32{1, 0}),
		})
	}
}

func TestSuggestClipsCentroidDedupeWithoutTypeEmbedder(t *testing.T) {
	fx := newSuggestionFixture(t, false)
	storeIdenticalEmbeddings(fx)
	// No prototype embedder configured: type scoring is off, but the stored
	// embeddings are complete, so near-identical centroids must still dedupe.

	result, err := fx.svc.SuggestClips(context.Background(), testSermonID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Suggestions != 1 {
		t.Fatalf("identical centroids must dedupe to one clip, got %d", result.Suggestions)
	}
	live := fx.clips.live(testSermonID)
	if len(live) != 1 {
		t.Fatalf("expected 1 live clip, got %d", len(live))
	}
	if strings.Contains(*live[0].Rationale, "type=") {
		t.Fatalf("type scoring must stay off without an embedder: %q", *live[0].Rationale)
	}
}

func TestSuggestClipsTypeEmbedRetriedAfterFailure(t *testing.T) {
	fx := newSuggestionFixture(t, false)
	storeIdenticalEmbeddings(fx)
	embedder := &fakeEmbedder{dim: 2}
	embedder.fn = func(inputs []string) ([][]float32, error) {
		if embedder.calls == 1 {
			return nil, errors.New("connection refused")
		}
		return [][]float32{{0, 1}, {0.5, 0.5}, {1, 0}, {-1, 0}}, nil
	}
	fx.svc.embedder = embedder

	// First run: the prototype embed fails, type scoring is skipped, but the
	// centroid dedupe still collapses the identical windows.
	result, err := fx.svc.SuggestClips(context.Background(), testSermonID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Suggestions != 1 {
		t.Fatalf("dedupe must survive a prototype embed failure, got %d", result.Suggestions)
	}
	if strings.Contains(*fx.clips.live(testSermonID)[0].Rationale, "type=") {
		t.Fatalf("type scoring must be skipped when the prototype embed fails")
	}

	// Second run: the failure was not cached, so the embed is retried and
	// type scoring comes back.
	result, err = fx.svc.SuggestClips(context.Background(), testSermonID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if embedder.calls != 2 {
		t.Fatalf("prototype embed must be retried after a failure, calls=%d", embedder.calls)
	}
	if result.Suggestions != 1 {
		t.Fatalf("expected one deduped clip, got %d", result.Suggestions)
	}
	if !strings.Contains(*fx.clips.live(testSermonID)[0].Rationale, "type=application") {
		t.Fatalf("type scoring must resume once the embed succeeds: %q", *fx.clips.live(testSermonID)[0].Rationale)
	}

	// Third run: success is cached, no further prototype embeds.
	if _, err := fx.svc.SuggestClips(context.Background(), testSermonID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if embedder.calls != 2 {
		t.Fatalf("successful prototype embed must be cached, calls=%d", embedder.calls)
	}
}
