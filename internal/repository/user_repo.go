package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/activity-report-api/internal/models"
)

// UserRepository resolves users for owner filters and report joins.
type UserRepository interface {
	IDsByDepartment(ctx context.Context, department string) ([]string, error)
	IDsByNameContains(ctx context.Context, fragment string) ([]string, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a gorm-backed user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) IDsByDepartment(ctx context.Context, department string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("department = ?", department).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userRepository) IDsByNameContains(ctx context.Context, fragment string) ([]string, error) {
	like := "%" + escapeLike(strings.ToLower(fragment)) + "%"

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, like).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
