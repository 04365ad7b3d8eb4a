package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/activity-report-api/internal/models"
)

// SubmissionQuery narrows submission reads. A nil OwnerIDs leaves owners unconstrained;
// a non-nil empty slice matches nothing.
type SubmissionQuery struct {
	OwnerIDs   []string
	TemplateID string
	Status     string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
	// All disables skip/limit so exports receive every matching row.
	All bool
}

// SubmissionRepository is the read side of the submission fact table.
type SubmissionRepository interface {
	Search(ctx context.Context, query SubmissionQuery) ([]models.Submission, int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Search(ctx context.Context, q SubmissionQuery) ([]models.Submission, int64, error) {
	if q.OwnerIDs != nil && len(q.OwnerIDs) == 0 {
		return []models.Submission{}, 0, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Submission{})

	if q.OwnerIDs != nil {
		if len(q.OwnerIDs) == 1 {
			query = query.Where("user_id = ?", q.OwnerIDs[0])
		} else {
			query = query.Where("user_id IN ?", q.OwnerIDs)
		}
	}

	if q.TemplateID != "" {
		query = query.Where("template_id = ?", q.TemplateID)
	}

	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}

	if q.From != nil {
		query = query.Where("created_at >= ?", *q.From)
	}

	if q.To != nil {
		query = query.Where("created_at <= ?", *q.To)
	}

	var submissions []models.Submission

	if q.All {
		if err := newestFirst(query).Find(&submissions).Error; err != nil {
			return nil, 0, err
		}
		return submissions, int64(len(submissions)), nil
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = newestFirst(query)

	page := q.Page
	if page <= 0 {
		page = 1
	}
	if q.PageSize > 0 {
		query = query.Limit(q.PageSize).Offset((page - 1) * q.PageSize)
	}

	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

// newestFirst orders by creation time with the identifier as tie-breaker so pages are stable.
func newestFirst(query *gorm.DB) *gorm.DB {
	return query.Order("created_at DESC").Order("id DESC")
}
