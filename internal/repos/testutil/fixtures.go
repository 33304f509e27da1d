package testutil

import (
	"context"
	"testing"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/yungbote/sermonclips-backend/internal/types"
)

func SeedSermon(tb testing.TB, ctx context.Context, tx *gorm.DB, status types.SermonStatus) *types.Sermon {
	tb.Helper()
	s := &types.Sermon{
		Status:   status,
		Progress: 0,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed sermon: %v", err)
	}
	return s
}

func SeedSegment(tb testing.TB, ctx context.Context, tx *gorm.DB, sermonID int64, startMS, endMS int, text string) *types.TranscriptSegment {
	tb.Helper()
	seg := &types.TranscriptSegment{
		SermonID: sermonID,
		StartMS:  startMS,
		EndMS:    endMS,
		Text:     text,
	}
	if err := tx.WithContext(ctx).Create(seg).Error; err != nil {
		tb.Fatalf("seed segment: %v", err)
	}
	return seg
}

func SeedEmbedding(tb testing.TB, ctx context.Context, tx *gorm.DB, sermonID, segmentID int64, vec []float32) *types.TranscriptEmbedding {
	tb.Helper()
	e := &types.TranscriptEmbedding{
		SermonID:  sermonID,
		SegmentID: segmentID,
		Text:      "snapshot",
		Embedding: pgvector.NewVector(vec),
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed embedding: %v", err)
	}
	return e
}

func SeedAutoClip(tb testing.TB, ctx context.Context, tx *gorm.DB, sermonID int64, startMS, endMS int, score float64) *types.Clip {
	tb.Helper()
	c := &types.Clip{
		SermonID: sermonID,
		StartMS:  startMS,
		EndMS:    endMS,
		Source:   types.ClipSourceAuto,
		Status:   types.ClipStatusPending,
		Score:    &score,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed clip: %v", err)
	}
	return c
}
