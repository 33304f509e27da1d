package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/sermonclips-backend/internal/clients/deepseek"
	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/repos"
	"github.com/yungbote/sermonclips-backend/internal/suggest"
	"github.com/yungbote/sermonclips-backend/internal/types"
	"github.com/yungbote/sermonclips-backend/internal/utils"
)

// StatusDeleted marks a run that no-oped because the sermon was soft-deleted.
const StatusDeleted = "deleted"

var (
	ErrSermonNotFound = errors.New("sermon not found")
	ErrNoSegments     = errors.New("no transcript segments available")

	errSermonDeleted = errors.New("sermon deleted mid-run")
)

// SuggestClipsResult reports what a suggestion run did.
type SuggestClipsResult struct {
	SermonID    int64
	Status      string
	Suggestions int
	LLMUsed     bool
	TokenUsage  *deepseek.TokenUsage
}

type SuggestionService interface {
	// SuggestClips regenerates the auto clip suggestions for a sermon.
	// useLLM overrides the configured default when non-nil.
	SuggestClips(ctx context.Context, sermonID int64, useLLM *bool) (*SuggestClipsResult, error)
}

type suggestionService struct {
	log        *logger.Logger
	txr        TxRunner
	sermons    repos.SermonRepo
	segments   repos.TranscriptSegmentRepo
	embeddings repos.TranscriptEmbeddingRepo
	clips      repos.ClipRepo
	llm        deepseek.Client
	embedder   EmbeddingProvider

	useLLMDefault bool
	now           func() time.Time

	typeRefsMu sync.Mutex
	typeRefs   []suggest.TypeVector
}

// NewSuggestionService wires the suggestion pipeline. embedder may be nil;
// semantic type scoring is skipped in that case.
func NewSuggestionService(
	log *logger.Logger,
	txr TxRunner,
	sermons repos.SermonRepo,
	segments repos.TranscriptSegmentRepo,
	embeddings repos.TranscriptEmbeddingRepo,
	clips repos.ClipRepo,
	llm deepseek.Client,
	embedder EmbeddingProvider,
) SuggestionService {
	svcLog := log.With("service", "SuggestionService")
	return &suggestionService{
		log:           svcLog,
		txr:           txr,
		sermons:       sermons,
		segments:      segments,
		embeddings:    embeddings,
		clips:         clips,
		llm:           llm,
		embedder:      embedder,
		useLLMDefault: utils.GetEnvAsBool("USE_LLM_FOR_CLIP_SUGGESTIONS", false, svcLog),
		now:           time.Now,
	}
}

func (s *suggestionService) SuggestClips(ctx context.Context, sermonID int64, useLLM *bool) (*SuggestClipsResult, error) {
	sermon, err := s.sermons.GetByID(ctx, nil, sermonID)
	if err != nil {
		return nil, err
	}
	if sermon == nil {
		return nil, fmt.Errorf("%w: %d", ErrSermonNotFound, sermonID)
	}
	if sermon.DeletedAt != nil {
		s.log.Info("sermon is deleted, skipping suggestions", "sermon_id", sermonID)
		return &SuggestClipsResult{SermonID: sermonID, Status: StatusDeleted}, nil
	}
	if err := s.sermons.UpdateFields(ctx, nil, sermonID, map[string]any{"error_message": nil}); err != nil {
		return nil, err
	}

	segmentRows, err := s.segments.ListBySermonID(ctx, nil, sermonID)
	if err != nil {
		return nil, err
	}
	if len(segmentRows) == 0 {
		return nil, fmt.Errorf("%w for sermon %d", ErrNoSegments, sermonID)
	}

	segments, embeddingsReady, err := s.loadSegments(ctx, segmentRows)
	if err != nil {
		return nil, err
	}
	var prefix [][]float32
	if embeddingsReady {
		prefix = suggest.BuildEmbeddingPrefix(segments)
	}

	s.log.Info("suggesting clips", "sermon_id", sermonID, "segments", len(segments))

	breakpoints := suggest.FindBreakpoints(segments)
	candidates, err := suggest.GenerateCandidates(segments, breakpoints)
	if err != nil {
		return nil, err
	}

	if prefix != nil {
		// Centroids feed the semantic dedupe, so they are attached whenever
		// the stored embeddings are complete, with or without type scoring.
		suggest.AttachEmbeddings(candidates, prefix)
		if refs := s.typeVectors(ctx); refs != nil {
			suggest.SortByHeuristicScore(candidates)
			limit := len(candidates)
			if limit > suggest.SemanticTypeMax {
				limit = suggest.SemanticTypeMax
			}
			suggest.ApplySemanticScoring(candidates[:limit], prefix, refs)
		}
	}

	allCandidates := candidates
	useLLMEffective := s.useLLMDefault
	if useLLM != nil {
		useLLMEffective = *useLLM
	}

	llmUsed := false
	var tokenUsage *deepseek.TokenUsage
	if useLLMEffective {
		top := make([]suggest.Candidate, len(allCandidates))
		copy(top, allCandidates)
		suggest.SortByHeuristicScore(top)
		if len(top) > suggest.LLMMaxCandidates {
			top = top[:suggest.LLMMaxCandidates]
		}
		usage, err := s.scoreWithLLM(ctx, top)
		if err != nil {
			if deepseek.IsClientError(err) {
				s.log.Warn("llm scoring unavailable, falling back to heuristics", "error", err)
			} else {
				return nil, err
			}
		} else {
			llmUsed = true
			tokenUsage = usage
			candidates = top
		}
	}

	if llmUsed {
		suggest.ScaleHeuristicScores(candidates)
		suggest.ApplyTrimSuggestions(candidates, segments)
		suggest.FuseScores(candidates)
	} else {
		candidates = allCandidates
		suggest.ApplyHeuristicScores(candidates)
	}

	suggest.SortByScore(candidates)
	candidates = suggest.DedupeOverlapping(candidates)
	suggest.SortByScore(candidates)
	candidates = suggest.SemanticDedupe(candidates)
	if len(candidates) > suggest.MaxSuggestions {
		candidates = candidates[:suggest.MaxSuggestions]
	}

	s.log.Info("generated candidate clips after dedupe", "sermon_id", sermonID, "count", len(candidates))

	var usageJSON datatypes.JSON
	if tokenUsage != nil {
		encoded, err := json.Marshal(tokenUsage)
		if err != nil {
			return nil, err
		}
		usageJSON = datatypes.JSON(encoded)
	}

	created := 0
	err = s.txr.Transaction(ctx, func(tx *gorm.DB) error {
		current, err := s.sermons.GetByID(ctx, tx, sermonID)
		if err != nil {
			return err
		}
		if current == nil || current.DeletedAt != nil {
			return errSermonDeleted
		}

		now := s.now().UTC()
		if _, err := s.clips.SoftDeleteAutoBySermonID(ctx, tx, sermonID, now); err != nil {
			return err
		}

		rows := make([]*types.Clip, 0, len(candidates))
		for i := range candidates {
			row, err := s.clipRow(sermonID, &candidates[i], usageJSON)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		if err := s.clips.Create(ctx, tx, rows); err != nil {
			return err
		}
		created = len(rows)

		return s.sermons.UpdateFields(ctx, tx, sermonID, map[string]any{
			"status":        types.SermonStatusSuggested,
			"error_message": nil,
		})
	})
	if errors.Is(err, errSermonDeleted) {
		s.log.Info("sermon deleted during suggestions", "sermon_id", sermonID)
		return &SuggestClipsResult{SermonID: sermonID, Status: StatusDeleted}, nil
	}
	if err != nil {
		return nil, err
	}

	if created < suggest.MinSuggestions {
		s.log.Warn("fewer suggestions than target", "sermon_id", sermonID, "count", created)
	}
	s.log.Info("saved clip suggestions", "sermon_id", sermonID, "count", created)
	return &SuggestClipsResult{
		SermonID:    sermonID,
		Status:      "ok",
		Suggestions: created,
		LLMUsed:     llmUsed,
		TokenUsage:  tokenUsage,
	}, nil
}

// loadSegments converts rows to pipeline segments and attaches stored
// embeddings. The second return is true only when every segment has one.
func (s *suggestionService) loadSegments(ctx context.Context, rows []*types.TranscriptSegment) ([]suggest.Segment, bool, error) {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	embeddingRows, err := s.embeddings.GetBySegmentIDs(ctx, nil, ids)
	if err != nil {
		return nil, false, err
	}
	vectors := make(map[int64][]float32, len(embeddingRows))
	for _, e := range embeddingRows {
		vectors[e.SegmentID] = e.Embedding.Slice()
	}

	segments := make([]suggest.Segment, 0, len(rows))
	for _, row := range rows {
		segments = append(segments, suggest.Segment{
			ID:        row.ID,
			StartMS:   row.StartMS,
			EndMS:     row.EndMS,
			Text:      row.Text,
			Embedding: vectors[row.ID],
		})
	}
	return segments, len(vectors) == len(rows), nil
}

// scoreWithLLM submits the candidates for scoring and writes the results
// back. Fewer results than candidates counts as a client failure so the
// caller falls back to heuristics wholesale.
func (s *suggestionService) scoreWithLLM(ctx context.Context, candidates []suggest.Candidate) (*deepseek.TokenUsage, error) {
	payload := make([]deepseek.Candidate, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		durationSec := int(float64(c.DurationMS())/1000.0 + 0.5)
		if durationSec < 1 {
			durationSec = 1
		}
		c.CandidateID = fmt.Sprintf("c%d", i+1)
		c.ApproxDurationSec = durationSec
		payload = append(payload, deepseek.Candidate{
			ID:                c.CandidateID,
			Text:              c.Text,
			ApproxDurationSec: durationSec,
		})
	}

	result, err := s.llm.ScoreClipCandidates(ctx, payload)
	if err != nil {
		return nil, err
	}
	scored := make(map[string]deepseek.ScoredClip, len(result.Clips))
	for _, clip := range result.Clips {
		scored[clip.ID] = clip
	}
	if len(scored) != len(payload) {
		return nil, &deepseek.ClientError{Msg: "deepseek returned incomplete scores"}
	}

	for i := range candidates {
		c := &candidates[i]
		clip := scored[c.CandidateID]
		c.LLMScore = clip.Score
		c.LLMReason = clip.Reason
		if clip.Trim != nil {
			c.LLMTrim = &suggest.TrimSuggestion{
				StartOffsetSec: clip.Trim.StartOffsetSec,
				EndOffsetSec:   clip.Trim.EndOffsetSec,
			}
			if clip.Trim.Confidence != nil {
				c.LLMTrim.Confidence = *clip.Trim.Confidence
			}
		}
		c.LLMTrimConfidence = clip.TrimConfidence
	}
	return &result.TokenUsage, nil
}

func (s *suggestionService) clipRow(sermonID int64, c *suggest.Candidate, usageJSON datatypes.JSON) (*types.Clip, error) {
	score := c.Score
	rationale := c.Rationale
	row := &types.Clip{
		SermonID:    sermonID,
		StartMS:     c.StartMS,
		EndMS:       c.EndMS,
		Source:      types.ClipSourceAuto,
		Status:      types.ClipStatusPending,
		Score:       &score,
		Rationale:   &rationale,
		UseLLM:      c.UseLLM,
		TrimApplied: c.TrimApplied,
		ReframeMode: types.ClipReframeCenter,
	}
	if c.LLMTrim != nil {
		encoded, err := json.Marshal(c.LLMTrim)
		if err != nil {
			return nil, err
		}
		row.LLMTrim = datatypes.JSON(encoded)
	}
	if c.LLMTrimConfidence != nil {
		confidence := *c.LLMTrimConfidence
		row.LLMTrimConfidence = &confidence
	}
	if c.UseLLM {
		row.LLMTokenUsage = usageJSON
	}
	return row, nil
}

// typeVectors lazily embeds the type prototype sentences. Only success is
// cached: a failed embed is retried on the next run, so a transient outage
// of the embeddings endpoint skips semantic type scoring for that run only.
func (s *suggestionService) typeVectors(ctx context.Context) []suggest.TypeVector {
	if s.embedder == nil {
		return nil
	}
	s.typeRefsMu.Lock()
	defer s.typeRefsMu.Unlock()
	if s.typeRefs != nil {
		return s.typeRefs
	}

	texts := make([]string, 0, len(suggest.TypeExamples))
	for _, ex := range suggest.TypeExamples {
		texts = append(texts, ex.Text)
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		s.log.Warn("failed to embed type prototypes, skipping semantic scoring for this run", "error", err)
		return nil
	}
	if len(vectors) != len(texts) {
		s.log.Warn("embedder returned wrong prototype count, skipping semantic scoring for this run",
			"expected", len(texts), "got", len(vectors))
		return nil
	}
	refs := make([]suggest.TypeVector, 0, len(vectors))
	for i, vec := range vectors {
		refs = append(refs, suggest.TypeVector{Name: suggest.TypeExamples[i].Name, Embedding: vec})
	}
	s.typeRefs = refs
	return refs
}
