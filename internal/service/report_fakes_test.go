package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/activity-report-api/internal/models"
	"github.com/noah-isme/activity-report-api/internal/repository"
	"github.com/noah-isme/activity-report-api/pkg/renderer"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeUserRepo struct {
	mu        sync.Mutex
	users     []models.User
	err       error
	deptCalls int
	nameCalls int
}

func (f *fakeUserRepo) IDsByDepartment(_ context.Context, department string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deptCalls++
	if f.err != nil {
		return nil, f.err
	}
	ids := []string{}
	for _, user := range f.users {
		if user.Department == department {
			ids = append(ids, user.ID)
		}
	}
	return ids, nil
}

func (f *fakeUserRepo) IDsByNameContains(_ context.Context, fragment string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nameCalls++
	if f.err != nil {
		return nil, f.err
	}
	ids := []string{}
	for _, user := range f.users {
		if containsFold(user.Name, fragment) {
			ids = append(ids, user.ID)
		}
	}
	return ids, nil
}

func (f *fakeUserRepo) GetByIDs(_ context.Context, ids []string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := []models.User{}
	for _, user := range f.users {
		if _, ok := wanted[user.ID]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

type fakeTemplateRepo struct {
	templates []models.ActivityTemplate
	err       error
}

func (f *fakeTemplateRepo) List(context.Context) ([]models.ActivityTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.templates, nil
}

func (f *fakeTemplateRepo) GetByIDs(_ context.Context, ids []string) ([]models.ActivityTemplate, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := []models.ActivityTemplate{}
	for _, template := range f.templates {
		if _, ok := wanted[template.ID]; ok {
			out = append(out, template)
		}
	}
	return out, nil
}

type fakeSubmissionRepo struct {
	items   []models.Submission
	err     error
	calls   int
	queries []repository.SubmissionQuery
}

func (f *fakeSubmissionRepo) Search(_ context.Context, q repository.SubmissionQuery) ([]models.Submission, int64, error) {
	f.calls++
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, 0, f.err
	}

	owners := map[string]struct{}{}
	for _, id := range q.OwnerIDs {
		owners[id] = struct{}{}
	}

	matched := []models.Submission{}
	for _, item := range f.items {
		if q.OwnerIDs != nil {
			if _, ok := owners[item.UserID]; !ok {
				continue
			}
		}
		if q.TemplateID != "" && item.TemplateID != q.TemplateID {
			continue
		}
		if q.Status != "" && item.Status != q.Status {
			continue
		}
		if q.From != nil && item.CreatedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && item.CreatedAt.After(*q.To) {
			continue
		}
		matched = append(matched, item)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	if q.All {
		return matched, total, nil
	}

	start := (q.Page - 1) * q.PageSize
	if start >= len(matched) {
		return []models.Submission{}, total, nil
	}
	end := start + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

type fakeRenderer struct {
	calls  int
	tables []renderer.Table
	budget renderer.Budget
	err    error
	block  bool
}

func (f *fakeRenderer) Render(ctx context.Context, table renderer.Table, budget renderer.Budget) ([]byte, error) {
	f.calls++
	f.tables = append(f.tables, table)
	f.budget = budget
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7 fake"), nil
}

var _ renderer.Renderer = (*fakeRenderer)(nil)

func containsFold(value, fragment string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(fragment))
}
