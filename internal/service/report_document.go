package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/noah-isme/activity-report-api/pkg/renderer"
)

// ScopeKind names the primary target of a report.
type ScopeKind string

const (
	ScopeStudent    ScopeKind = "student"
	ScopeActivity   ScopeKind = "activity"
	ScopeDepartment ScopeKind = "department"
	ScopeFiltered   ScopeKind = "filtered"
)

// Scope is the report's primary target, used for titles, filenames and error context.
type Scope struct {
	Kind   ScopeKind
	Target string
}

func (s Scope) String() string {
	if s.Kind == ScopeFiltered || s.Target == "" {
		return string(ScopeFiltered)
	}
	return fmt.Sprintf("%s %s", s.Kind, s.Target)
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// filename follows <scope>_report_<YYYYMMDD>.<ext>.
func (s Scope) filename(now time.Time, ext string) string {
	prefix := string(ScopeFiltered)
	if s.Kind != ScopeFiltered && s.Target != "" {
		prefix = fmt.Sprintf("%s_%s", s.Kind, unsafeFilenameChars.ReplaceAllString(s.Target, "_"))
	}
	return fmt.Sprintf("%s_report_%s.%s", prefix, now.Format("20060102"), ext)
}

func (s Scope) title(rows []ReportRow) string {
	switch s.Kind {
	case ScopeStudent:
		name := s.Target
		if len(rows) > 0 && rows[0].Owner != nil && rows[0].Owner.Name != "" {
			name = rows[0].Owner.Name
		}
		return "Student Activity Report - " + name
	case ScopeActivity:
		name := s.Target
		if len(rows) > 0 && rows[0].Template != nil {
			name = rows[0].Template.DisplayName()
		}
		return "Activity Type Report - " + name
	case ScopeDepartment:
		return "Department Activity Report - " + s.Target
	default:
		return "Filtered Activity Report"
	}
}

// projectTable builds the printable table using the same field table as the CSV output.
func projectTable(scope Scope, filter ResolvedFilter, rows []ReportRow, generatedAt time.Time, loc *time.Location) renderer.Table {
	table := renderer.Table{
		Title:       scope.title(rows),
		GeneratedAt: generatedAt.In(loc).Format("2006-01-02 15:04"),
		Columns:     columnLabels(),
	}

	if filter.From != nil || filter.To != nil {
		from, to := "Start", "End"
		if filter.From != nil {
			from = filter.From.In(loc).Format(submissionDateLayout)
		}
		if filter.To != nil {
			to = filter.To.In(loc).Format(submissionDateLayout)
		}
		table.Meta = append(table.Meta, fmt.Sprintf("Date Range: %s to %s", from, to))
	}
	table.Meta = append(table.Meta, fmt.Sprintf("Total Submissions: %d", len(rows)))

	if len(rows) == 0 {
		table.EmptyMessage = "No data found for " + strings.TrimSpace(scope.String())
		return table
	}

	table.Rows = make([][]string, 0, len(rows))
	for _, row := range rows {
		table.Rows = append(table.Rows, rowCells(row, loc, true))
	}
	return table
}
