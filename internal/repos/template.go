package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/types"
)

type TemplateRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Template, error)
}

type templateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTemplateRepo(db *gorm.DB, baseLog *logger.Logger) TemplateRepo {
	return &templateRepo{db: db, log: baseLog.With("repo", "TemplateRepo")}
}

func (r *templateRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Template, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var tpl types.Template
	if err := transaction.WithContext(ctx).
		First(&tpl, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tpl, nil
}
