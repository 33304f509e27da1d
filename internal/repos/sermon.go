package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/types"
)

type SermonRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Sermon, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id int64, updates map[string]any) error
}

type sermonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSermonRepo(db *gorm.DB, baseLog *logger.Logger) SermonRepo {
	return &sermonRepo{db: db, log: baseLog.With("repo", "SermonRepo")}
}

func (r *sermonRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Sermon, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var sermon types.Sermon
	if err := transaction.WithContext(ctx).First(&sermon, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sermon, nil
}

func (r *sermonRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id int64, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Sermon{}).
		Where("id = ?", id).
		Updates(updates).Error
}
