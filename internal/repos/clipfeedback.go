package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/types"
)

type ClipFeedbackRepo interface {
	Create(ctx context.Context, tx *gorm.DB, fb *types.ClipFeedback) error
	ListByClipID(ctx context.Context, tx *gorm.DB, clipID int64) ([]*types.ClipFeedback, error)
}

type clipFeedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClipFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) ClipFeedbackRepo {
	return &clipFeedbackRepo{db: db, log: baseLog.With("repo", "ClipFeedbackRepo")}
}

func (r *clipFeedbackRepo) Create(ctx context.Context, tx *gorm.DB, fb *types.ClipFeedback) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(fb).Error
}

func (r *clipFeedbackRepo) ListByClipID(ctx context.Context, tx *gorm.DB, clipID int64) ([]*types.ClipFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ClipFeedback
	if err := transaction.WithContext(ctx).
		Where("clip_id = ?", clipID).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
