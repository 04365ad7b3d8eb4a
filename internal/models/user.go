package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles recognised by the reporting engine.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleTeacher    = "teacher"
	RoleDeptAdmin  = "deptadmin"
	RoleSuperAdmin = "superadmin"
)

// User is the identity record owned by the identity subsystem. Reports only read it.
type User struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Name       string    `gorm:"size:255;not null;index" json:"name"`
	Email      string    `gorm:"size:255;uniqueIndex" json:"email"`
	Department string    `gorm:"size:128;index" json:"department"`
	Role       string    `gorm:"size:32;not null;default:user" json:"role"`
	Year       string    `gorm:"size:16" json:"year,omitempty"`
	Section    string    `gorm:"size:16" json:"section,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate assigns an identifier when the writer did not supply one.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// NormalizeRole lowercases and trims a role string.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// IsAdminClass reports whether the role may filter by student name.
func IsAdminClass(role string) bool {
	switch NormalizeRole(role) {
	case RoleAdmin, RoleSuperAdmin, RoleDeptAdmin:
		return true
	default:
		return false
	}
}

// IsKnownRole reports whether role is one of the enumerated roles.
func IsKnownRole(role string) bool {
	switch NormalizeRole(role) {
	case RoleUser, RoleAdmin, RoleTeacher, RoleDeptAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}
