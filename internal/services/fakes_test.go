package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/sermonclips-backend/internal/clients/deepseek"
	"github.com/yungbote/sermonclips-backend/internal/types"
)

type fakeTxRunner struct{}

func (fakeTxRunner) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeSermonRepo struct {
	sermon      *types.Sermon
	getCalls    int
	deleteAfter int // after this many GetByID calls the sermon reads as deleted
}

func (f *fakeSermonRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Sermon, error) {
	f.getCalls++
	if f.sermon == nil || f.sermon.ID != id {
		return nil, nil
	}
	if f.deleteAfter > 0 && f.getCalls > f.deleteAfter && f.sermon.DeletedAt == nil {
		now := time.Now()
		f.sermon.DeletedAt = &now
	}
	return f.sermon, nil
}

func (f *fakeSermonRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id int64, updates map[string]any) error {
	if f.sermon == nil || f.sermon.ID != id {
		return nil
	}
	if v, ok := updates["status"]; ok {
		f.sermon.Status = v.(types.SermonStatus)
	}
	if v, ok := updates["error_message"]; ok {
		if v == nil {
			f.sermon.ErrorMessage = nil
		} else if s, ok := v.(string); ok {
			f.sermon.ErrorMessage = &s
		} else if p, ok := v.(*string); ok {
			f.sermon.ErrorMessage = p
		}
	}
	return nil
}

type fakeSegmentRepo struct {
	segments []*types.TranscriptSegment
}

func (f *fakeSegmentRepo) ListBySermonID(ctx context.Context, tx *gorm.DB, sermonID int64) ([]*types.TranscriptSegment, error) {
	var out []*types.TranscriptSegment
	for _, seg := range f.segments {
		if seg.SermonID == sermonID && seg.DeletedAt == nil {
			out = append(out, seg)
		}
	}
	return out, nil
}

type fakeEmbeddingRepo struct {
	rows []*types.TranscriptEmbedding
}

func (f *fakeEmbeddingRepo) GetBySegmentIDs(ctx context.Context, tx *gorm.DB, segmentIDs []int64) ([]*types.TranscriptEmbedding, error) {
	wanted := make(map[int64]bool, len(segmentIDs))
	for _, id := range segmentIDs {
		wanted[id] = true
	}
	var out []*types.TranscriptEmbedding
	for _, row := range f.rows {
		if wanted[row.SegmentID] && row.DeletedAt == nil {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeEmbeddingRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.TranscriptEmbedding) error {
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeEmbeddingRepo) SoftDeleteBySermonID(ctx context.Context, tx *gorm.DB, sermonID int64, now time.Time) error {
	for _, row := range f.rows {
		if row.SermonID == sermonID && row.DeletedAt == nil {
			t := now
			row.DeletedAt = &t
			row.UpdatedAt = now
		}
	}
	return nil
}

type fakeClipRepo struct {
	clips []*types.Clip
}

func (f *fakeClipRepo) Create(ctx context.Context, tx *gorm.DB, clips []*types.Clip) error {
	f.clips = append(f.clips, clips...)
	return nil
}

func (f *fakeClipRepo) SoftDeleteAutoBySermonID(ctx context.Context, tx *gorm.DB, sermonID int64, now time.Time) (int64, error) {
	var n int64
	for _, clip := range f.clips {
		if clip.SermonID == sermonID && clip.Source == types.ClipSourceAuto && clip.DeletedAt == nil {
			t := now
			clip.DeletedAt = &t
			clip.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (f *fakeClipRepo) ListAutoBySermonID(ctx context.Context, tx *gorm.DB, sermonID int64) ([]*types.Clip, error) {
	var out []*types.Clip
	for _, clip := range f.clips {
		if clip.SermonID == sermonID && clip.Source == types.ClipSourceAuto && clip.DeletedAt == nil {
			out = append(out, clip)
		}
	}
	return out, nil
}

func (f *fakeClipRepo) live(sermonID int64) []*types.Clip {
	var out []*types.Clip
	for _, clip := range f.clips {
		if clip.SermonID == sermonID && clip.DeletedAt == nil {
			out = append(out, clip)
		}
	}
	return out
}

type fakeLLM struct {
	fn          func(candidates []deepseek.Candidate) (*deepseek.ScoreResult, error)
	calls       int
	lastPayload []deepseek.Candidate
}

func (f *fakeLLM) ScoreClipCandidates(ctx context.Context, candidates []deepseek.Candidate) (*deepseek.ScoreResult, error) {
	f.calls++
	f.lastPayload = candidates
	return f.fn(candidates)
}

type fakeEmbedder struct {
	dim   int
	calls int
	fn    func(inputs []string) ([][]float32, error)
}

func (f *fakeEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	f.calls++
	return f.fn(inputs)
}

func (f *fakeEmbedder) Dim() int { return f.dim }
