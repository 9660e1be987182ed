package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/loretops/coinvest-docs/service/storage/models"
)

type ViewRepository interface {
	Record(ctx context.Context, view *models.DocumentView) error
	ListForDocument(ctx context.Context, documentID string) ([]*models.DocumentView, error)
	DeleteForDocument(ctx context.Context, documentID string) error
}

func NewViewRepository(db *gorm.DB) ViewRepository {
	return &viewRepository{db: db}
}

type viewRepository struct {
	db *gorm.DB
}

func (vr *viewRepository) Record(ctx context.Context, view *models.DocumentView) error {
	return vr.db.WithContext(ctx).Create(view).Error
}

func (vr *viewRepository) ListForDocument(ctx context.Context, documentID string) ([]*models.DocumentView, error) {
	views := make([]*models.DocumentView, 0)
	err := vr.db.WithContext(ctx).Where("document_id = ?", documentID).Order("created_at DESC").Find(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (vr *viewRepository) DeleteForDocument(ctx context.Context, documentID string) error {
	return vr.db.WithContext(ctx).Delete(&models.DocumentView{}, "document_id = ?", documentID).Error
}
