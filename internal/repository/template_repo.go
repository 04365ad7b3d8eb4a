package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/activity-report-api/internal/models"
)

// TemplateRepository reads activity templates.
type TemplateRepository interface {
	List(ctx context.Context) ([]models.ActivityTemplate, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.ActivityTemplate, error)
}

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository constructs a gorm-backed template repository.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) List(ctx context.Context) ([]models.ActivityTemplate, error) {
	var templates []models.ActivityTemplate
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepository) GetByIDs(ctx context.Context, ids []string) ([]models.ActivityTemplate, error) {
	if len(ids) == 0 {
		return []models.ActivityTemplate{}, nil
	}

	var templates []models.ActivityTemplate
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}
