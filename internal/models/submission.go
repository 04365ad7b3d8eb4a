package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Submission statuses.
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusDraft     = "draft"
	SubmissionStatusVerified  = "verified"
	SubmissionStatusApproved  = "approved"
	SubmissionStatusRejected  = "rejected"
)

// Proof references an uploaded piece of evidence attached to a submission.
type Proof struct {
	URL        string `json:"url"`
	StorageKey string `json:"key"`
	MediaType  string `json:"mediaType"`
	Width      *int   `json:"width,omitempty"`
	Height     *int   `json:"height,omitempty"`
}

// Submission is one student's report of one activity instance.
type Submission struct {
	ID         string                    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string                    `gorm:"size:36;not null;index" json:"user_id"`
	TemplateID string                    `gorm:"size:36;not null;index" json:"template_id"`
	Values     datatypes.JSONMap         `gorm:"type:json" json:"values"`
	Proofs     datatypes.JSONSlice[Proof] `gorm:"type:json" json:"proofs"`
	Status     string                    `gorm:"size:32;not null;index" json:"status"`
	Remarks    string                    `gorm:"type:text" json:"remarks"`
	CreatedAt  time.Time                 `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// BeforeCreate assigns an identifier when the writer did not supply one.
func (s *Submission) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// ProofCount returns the number of attached proofs.
func (s Submission) ProofCount() int {
	return len(s.Proofs)
}
