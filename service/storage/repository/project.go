package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/loretops/coinvest-docs/service/storage/models"
)

type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*models.Project, error)
	Exists(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, project *models.Project) error
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

type projectRepository struct {
	db *gorm.DB
}

func (pr *projectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	project := &models.Project{}
	err := pr.db.WithContext(ctx).First(project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (pr *projectRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := pr.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (pr *projectRepository) Save(ctx context.Context, project *models.Project) error {
	return pr.db.WithContext(ctx).Save(project).Error
}
