package dto

import (
	"time"

	"github.com/noah-isme/activity-report-api/internal/models"
)

// ReportCriteria carries the optional, loosely typed filters a caller may supply.
// The caller's identity is never read from here.
type ReportCriteria struct {
	Department  string `query:"department" validate:"omitempty,max=128"`
	Status      string `query:"status" validate:"omitempty,max=32"`
	TemplateID  string `query:"templateId" validate:"omitempty,uuid"`
	StudentID   string `query:"userId" validate:"omitempty,uuid"`
	StudentName string `query:"studentName" validate:"omitempty,max=255"`
	DateFrom    string `query:"dateRangeFrom"`
	DateTo      string `query:"dateRangeTo"`
	Page        int    `query:"page"`
	PageSize    int    `query:"pageSize"`
}

// OwnerSummary is the denormalised owner join.
type OwnerSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// TemplateSummary is the denormalised template join.
type TemplateSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReportItem is one submission with its joins, as emitted in JSON pages.
type ReportItem struct {
	ID        string              `json:"id"`
	Owner     *OwnerSummary       `json:"owner"`
	Template  *TemplateSummary    `json:"template"`
	Fields    []models.FieldValue `json:"fields"`
	Proofs    []models.Proof      `json:"proofs"`
	Status    string              `json:"status"`
	Remarks   string              `json:"remarks"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// ReportPage is the paginated JSON envelope.
type ReportPage struct {
	Items      []ReportItem `json:"items"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	TotalPages int          `json:"totalPages"`
}

// TemplateCatalogueItem describes an activity template for report filters.
type TemplateCatalogueItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Category    string `json:"category"`
	FieldCount  int    `json:"fieldCount"`
}

// NewTemplateCatalogueItem converts a template model into its catalogue entry.
func NewTemplateCatalogueItem(template models.ActivityTemplate) TemplateCatalogueItem {
	return TemplateCatalogueItem{
		ID:          template.ID,
		Name:        template.Name,
		DisplayName: template.DisplayName(),
		Category:    template.Category,
		FieldCount:  len(template.Fields),
	}
}
