package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/loretops/coinvest-docs/service/storage/models"
	"github.com/loretops/coinvest-docs/service/types"
)

// DocumentFilter narrows a project document listing. Empty fields match
// everything; set fields are ANDed equality filters.
type DocumentFilter struct {
	DocumentType types.DocumentType
	AccessLevel  types.AccessLevel
}

type DocumentRepository interface {
	GetByID(ctx context.Context, id string) (*models.ProjectDocument, error)
	ListByProject(ctx context.Context, projectID string, filter DocumentFilter) ([]*models.ProjectDocument, error)
	Save(ctx context.Context, document *models.ProjectDocument) error
	Delete(ctx context.Context, id string) error
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

type documentRepository struct {
	db *gorm.DB
}

func (dr *documentRepository) GetByID(ctx context.Context, id string) (*models.ProjectDocument, error) {
	document := &models.ProjectDocument{}
	err := dr.db.WithContext(ctx).Preload("Project").First(document, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return document, nil
}

func (dr *documentRepository) ListByProject(ctx context.Context, projectID string, filter DocumentFilter) ([]*models.ProjectDocument, error) {
	documents := make([]*models.ProjectDocument, 0)

	tx := dr.db.WithContext(ctx).Where("project_id = ?", projectID)
	if filter.DocumentType != "" {
		tx = tx.Where("document_type = ?", string(filter.DocumentType))
	}
	if filter.AccessLevel != "" {
		tx = tx.Where("access_level = ?", string(filter.AccessLevel))
	}

	err := tx.Order("created_at DESC").Find(&documents).Error
	if err != nil {
		return nil, err
	}
	return documents, nil
}

func (dr *documentRepository) Save(ctx context.Context, document *models.ProjectDocument) error {
	return dr.db.WithContext(ctx).Save(document).Error
}

func (dr *documentRepository) Delete(ctx context.Context, id string) error {
	return dr.db.WithContext(ctx).Delete(&models.ProjectDocument{}, "id = ?", id).Error
}
