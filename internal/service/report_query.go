package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/activity-report-api/internal/models"
	"github.com/noah-isme/activity-report-api/internal/repository"
)

// ExecutionMode selects between a single page and the full matching set.
type ExecutionMode int

const (
	// ModePage applies skip/limit for the requested page.
	ModePage ExecutionMode = iota
	// ModeAll returns every matching submission, used by exports.
	ModeAll
)

// ReportRow is a submission joined with its owner and template. Either join may be nil
// when the referenced record no longer exists.
type ReportRow struct {
	Submission models.Submission
	Owner      *models.User
	Template   *models.ActivityTemplate
}

// ResultSet is the executor output.
type ResultSet struct {
	Rows  []ReportRow
	Total int64
}

// QueryExecutor runs resolved filters against the submission store.
type QueryExecutor struct {
	submissions repository.SubmissionRepository
	users       repository.UserRepository
	templates   repository.TemplateRepository
}

// NewQueryExecutor constructs an executor over the given repositories.
func NewQueryExecutor(submissions repository.SubmissionRepository, users repository.UserRepository, templates repository.TemplateRepository) *QueryExecutor {
	return &QueryExecutor{submissions: submissions, users: users, templates: templates}
}

// Execute searches submissions and joins their owners and templates.
func (e *QueryExecutor) Execute(ctx context.Context, filter ResolvedFilter, mode ExecutionMode, scope string) (ResultSet, error) {
	items, total, err := e.submissions.Search(ctx, filter.Query(mode == ModeAll))
	if err != nil {
		return ResultSet{}, &StoreError{Op: "search submissions", Scope: scope, Err: err}
	}
	if len(items) == 0 {
		return ResultSet{Rows: []ReportRow{}, Total: total}, nil
	}

	ownerIDs := make([]string, 0, len(items))
	templateIDs := make([]string, 0, len(items))
	seenOwners := make(map[string]struct{}, len(items))
	seenTemplates := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seenOwners[item.UserID]; !ok {
			seenOwners[item.UserID] = struct{}{}
			ownerIDs = append(ownerIDs, item.UserID)
		}
		if _, ok := seenTemplates[item.TemplateID]; !ok {
			seenTemplates[item.TemplateID] = struct{}{}
			templateIDs = append(templateIDs, item.TemplateID)
		}
	}

	var (
		owners    []models.User
		templates []models.ActivityTemplate
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		found, err := e.users.GetByIDs(groupCtx, ownerIDs)
		if err != nil {
			return &StoreError{Op: "join owners", Scope: scope, Err: err}
		}
		owners = found
		return nil
	})
	group.Go(func() error {
		found, err := e.templates.GetByIDs(groupCtx, templateIDs)
		if err != nil {
			return &StoreError{Op: "join templates", Scope: scope, Err: err}
		}
		templates = found
		return nil
	})
	if err := group.Wait(); err != nil {
		return ResultSet{}, err
	}

	ownerByID := make(map[string]*models.User, len(owners))
	for i := range owners {
		ownerByID[owners[i].ID] = &owners[i]
	}
	templateByID := make(map[string]*models.ActivityTemplate, len(templates))
	for i := range templates {
		templateByID[templates[i].ID] = &templates[i]
	}

	rows := make([]ReportRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, ReportRow{
			Submission: item,
			Owner:      ownerByID[item.UserID],
			Template:   templateByID[item.TemplateID],
		})
	}

	return ResultSet{Rows: rows, Total: total}, nil
}
