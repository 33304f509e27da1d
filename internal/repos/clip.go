package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/types"
)

type ClipRepo interface {
	Create(ctx context.Context, tx *gorm.DB, clips []*types.Clip) error
	// SoftDeleteAutoBySermonID retires the current auto-suggestion set. The
	// caller passes one timestamp so deleted_at == updated_at across the sweep.
	SoftDeleteAutoBySermonID(ctx context.Context, tx *gorm.DB, sermonID int64, now time.Time) (int64, error)
	// ListAutoBySermonID returns the live auto suggestions ordered by score
	// descending, ties broken by start_ms then end_ms.
	ListAutoBySermonID(ctx context.Context, tx *gorm.DB, sermonID int64) ([]*types.Clip, error)
}

type clipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClipRepo(db *gorm.DB, baseLog *logger.Logger) ClipRepo {
	return &clipRepo{db: db, log: baseLog.With("repo", "ClipRepo")}
}

func (r *clipRepo) Create(ctx context.Context, tx *gorm.DB, clips []*types.Clip) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(clips) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Create(clips).Error
}

func (r *clipRepo) SoftDeleteAutoBySermonID(ctx context.Context, tx *gorm.DB, sermonID int64, now time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Clip{}).
		Where("sermon_id = ? AND source = ? AND deleted_at IS NULL", sermonID, types.ClipSourceAuto).
		Updates(map[string]any{"deleted_at": now, "updated_at": now})
	return res.RowsAffected, res.Error
}

func (r *clipRepo) ListAutoBySermonID(ctx context.Context, tx *gorm.DB, sermonID int64) ([]*types.Clip, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Clip
	if err := transaction.WithContext(ctx).
		Where("sermon_id = ? AND source = ? AND deleted_at IS NULL", sermonID, types.ClipSourceAuto).
		Order("score DESC, start_ms ASC, end_ms ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
