package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/types"
)

type TranscriptSegmentRepo interface {
	// ListBySermonID returns non-deleted segments ordered by start_ms ascending.
	ListBySermonID(ctx context.Context, tx *gorm.DB, sermonID int64) ([]*types.TranscriptSegment, error)
}

type transcriptSegmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTranscriptSegmentRepo(db *gorm.DB, baseLog *logger.Logger) TranscriptSegmentRepo {
	return &transcriptSegmentRepo{db: db, log: baseLog.With("repo", "TranscriptSegmentRepo")}
}

func (r *transcriptSegmentRepo) ListBySermonID(ctx context.Context, tx *gorm.DB, sermonID int64) ([]*types.TranscriptSegment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.TranscriptSegment
	if err := transaction.WithContext(ctx).
		Where("sermon_id = ? AND deleted_at IS NULL", sermonID).
		Order("start_ms ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
