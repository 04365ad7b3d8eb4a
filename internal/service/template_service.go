package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/activity-report-api/internal/dto"
	"github.com/noah-isme/activity-report-api/internal/repository"
)

// TemplateService exposes the read-only activity template catalogue.
type TemplateService interface {
	List(ctx context.Context) ([]dto.TemplateCatalogueItem, error)
}

type templateService struct {
	repo   repository.TemplateRepository
	logger zerolog.Logger
}

// NewTemplateService constructs the catalogue service.
func NewTemplateService(repo repository.TemplateRepository, logger zerolog.Logger) TemplateService {
	return &templateService{
		repo:   repo,
		logger: logger.With().Str("component", "template_service").Logger(),
	}
}

func (s *templateService) List(ctx context.Context) ([]dto.TemplateCatalogueItem, error) {
	templates, err := s.repo.List(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list templates", Scope: "catalogue", Err: err}
	}

	items := make([]dto.TemplateCatalogueItem, 0, len(templates))
	for _, template := range templates {
		items = append(items, dto.NewTemplateCatalogueItem(template))
	}
	return items, nil
}
