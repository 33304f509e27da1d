package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/types"
)

type TranscriptEmbeddingRepo interface {
	GetBySegmentIDs(ctx context.Context, tx *gorm.DB, segmentIDs []int64) ([]*types.TranscriptEmbedding, error)
	Create(ctx context.Context, tx *gorm.DB, rows []*types.TranscriptEmbedding) error
	// SoftDeleteBySermonID stamps deleted_at and updated_at with the given time
	// on every live embedding row for the sermon.
	SoftDeleteBySermonID(ctx context.Context, tx *gorm.DB, sermonID int64, now time.Time) error
}

type transcriptEmbeddingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTranscriptEmbeddingRepo(db *gorm.DB, baseLog *logger.Logger) TranscriptEmbeddingRepo {
	return &transcriptEmbeddingRepo{db: db, log: baseLog.With("repo", "TranscriptEmbeddingRepo")}
}

func (r *transcriptEmbeddingRepo) GetBySegmentIDs(ctx context.Context, tx *gorm.DB, segmentIDs []int64) ([]*types.TranscriptEmbedding, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.TranscriptEmbedding
	if len(segmentIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("segment_id IN ? AND deleted_at IS NULL", segmentIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *transcriptEmbeddingRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.TranscriptEmbedding) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	const batchSize = 100
	return transaction.WithContext(ctx).CreateInBatches(rows, batchSize).Error
}

func (r *transcriptEmbeddingRepo) SoftDeleteBySermonID(ctx context.Context, tx *gorm.DB, sermonID int64, now time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.TranscriptEmbedding{}).
		Where("sermon_id = ? AND deleted_at IS NULL", sermonID).
		Updates(map[string]any{"deleted_at": now, "updated_at": now}).Error
}
