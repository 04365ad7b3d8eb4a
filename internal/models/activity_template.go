package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FieldKind enumerates the input kinds a template field may use.
type FieldKind string

// Supported field kinds.
const (
	FieldKindText     FieldKind = "text"
	FieldKindNumber   FieldKind = "number"
	FieldKindDate     FieldKind = "date"
	FieldKindSelect   FieldKind = "select"
	FieldKindFile     FieldKind = "file"
	FieldKindTextarea FieldKind = "textarea"
)

// FieldDescriptor describes one input of an activity template.
type FieldDescriptor struct {
	FieldID     string    `json:"fieldId"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"type"`
	Required    bool      `json:"required"`
	Options     []string  `json:"options,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Min         *float64  `json:"min,omitempty"`
	Max         *float64  `json:"max,omitempty"`
	Multiple    bool      `json:"multiple"`
}

// ActivityTemplate is the administrator-defined schema for one kind of activity.
type ActivityTemplate struct {
	ID        string                              `gorm:"primaryKey;size:36" json:"id"`
	Name      string                              `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Category  string                              `gorm:"size:128;not null" json:"category"`
	Fields    datatypes.JSONSlice[FieldDescriptor] `gorm:"type:json" json:"fields"`
	CreatedAt time.Time                           `json:"created_at"`
	UpdatedAt time.Time                           `json:"updated_at"`
}

// BeforeCreate assigns an identifier when the writer did not supply one.
func (t *ActivityTemplate) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// DisplayName renders the template name for humans (underscores become spaces).
func (t ActivityTemplate) DisplayName() string {
	return strings.ReplaceAll(t.Name, "_", " ")
}
