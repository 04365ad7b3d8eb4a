package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"time"

	"github.com/noah-isme/activity-report-api/internal/dto"
	"github.com/noah-isme/activity-report-api/internal/models"
)

const (
	submissionDateLayout = "2006-01-02"
	displayIDLength      = 6
)

// reportColumn is one entry of the field table shared by the CSV and document outputs.
type reportColumn struct {
	label string
	value func(row ReportRow, loc *time.Location) string
	// shorten trims the value to its last displayIDLength characters in documents.
	shorten bool
}

var reportColumns = []reportColumn{
	{label: "Submission ID", shorten: true, value: func(row ReportRow, _ *time.Location) string {
		return row.Submission.ID
	}},
	{label: "Student Name", value: func(row ReportRow, _ *time.Location) string {
		if row.Owner == nil || row.Owner.Name == "" {
			return "Unknown"
		}
		return row.Owner.Name
	}},
	{label: "Department", value: func(row ReportRow, _ *time.Location) string {
		if row.Owner == nil || row.Owner.Department == "" {
			return "N/A"
		}
		return row.Owner.Department
	}},
	{label: "Activity Name", value: func(row ReportRow, _ *time.Location) string {
		if row.Template == nil || row.Template.Name == "" {
			return "Unknown"
		}
		return row.Template.DisplayName()
	}},
	{label: "Status", value: func(row ReportRow, _ *time.Location) string {
		if row.Submission.Status == "" {
			return "N/A"
		}
		return row.Submission.Status
	}},
	{label: "Submission Date", value: func(row ReportRow, loc *time.Location) string {
		return row.Submission.CreatedAt.In(loc).Format(submissionDateLayout)
	}},
	{label: "Proofs Count", value: func(row ReportRow, _ *time.Location) string {
		return fmt.Sprintf("%d", row.Submission.ProofCount())
	}},
	{label: "Remarks", value: func(row ReportRow, _ *time.Location) string {
		return row.Submission.Remarks
	}},
}

func columnLabels() []string {
	labels := make([]string, len(reportColumns))
	for i, column := range reportColumns {
		labels[i] = column.label
	}
	return labels
}

// rowCells maps a row through the field table. Document cells shorten identifiers.
func rowCells(row ReportRow, loc *time.Location, document bool) []string {
	cells := make([]string, len(reportColumns))
	for i, column := range reportColumns {
		value := column.value(row, loc)
		if document && column.shorten && len(value) > displayIDLength {
			value = value[len(value)-displayIDLength:]
		}
		cells[i] = value
	}
	return cells
}

// projectPage builds the paginated JSON envelope.
func projectPage(result ResultSet, filter ResolvedFilter) dto.ReportPage {
	items := make([]dto.ReportItem, 0, len(result.Rows))
	for _, row := range result.Rows {
		items = append(items, projectItem(row))
	}

	return dto.ReportPage{
		Items:      items,
		Total:      result.Total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages(result.Total, filter.PageSize),
	}
}

func projectItem(row ReportRow) dto.ReportItem {
	submission := row.Submission

	var fields []models.FieldDescriptor
	var template *dto.TemplateSummary
	if row.Template != nil {
		fields = row.Template.Fields
		template = &dto.TemplateSummary{ID: row.Template.ID, Name: row.Template.DisplayName()}
	}

	var owner *dto.OwnerSummary
	if row.Owner != nil {
		owner = &dto.OwnerSummary{ID: row.Owner.ID, Name: row.Owner.Name, Department: row.Owner.Department}
	}

	proofs := []models.Proof(submission.Proofs)
	if proofs == nil {
		proofs = []models.Proof{}
	}

	return dto.ReportItem{
		ID:        submission.ID,
		Owner:     owner,
		Template:  template,
		Fields:    models.TypeFieldValues(fields, submission.Values),
		Proofs:    proofs,
		Status:    submission.Status,
		Remarks:   submission.Remarks,
		CreatedAt: submission.CreatedAt,
		UpdatedAt: submission.UpdatedAt,
	}
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}

// projectCSV writes a header row plus one row per result using standard CSV quoting.
func projectCSV(rows []ReportRow, loc *time.Location) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(columnLabels()); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(rowCells(row, loc, false)); err != nil {
			return nil, fmt.Errorf("write csv row %s: %w", row.Submission.ID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}
