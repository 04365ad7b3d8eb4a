package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/activity-report-api/internal/dto"
	"github.com/noah-isme/activity-report-api/internal/models"
	"github.com/noah-isme/activity-report-api/internal/repository"
)

const fallbackPageSize = 50

// Identity is the authenticated caller as supplied by the auth middleware.
type Identity struct {
	ID         string
	Role       string
	Department string
}

// ResolvedFilter is the validated, role-overlaid description of a report query.
type ResolvedFilter struct {
	// OwnerIDs is nil when every owner is visible.
	OwnerIDs   []string
	TemplateID string
	Status     string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
	// Empty marks a filter that can match nothing; the executor must not run.
	Empty bool
}

// Query converts the filter into a repository query, paginated unless all is set.
func (f ResolvedFilter) Query(all bool) repository.SubmissionQuery {
	return repository.SubmissionQuery{
		OwnerIDs:   f.OwnerIDs,
		TemplateID: f.TemplateID,
		Status:     f.Status,
		From:       f.From,
		To:         f.To,
		Page:       f.Page,
		PageSize:   f.PageSize,
		All:        all,
	}
}

// FilterResolver turns raw criteria and a caller identity into a ResolvedFilter.
type FilterResolver struct {
	users           repository.UserRepository
	validator       *validator.Validate
	location        *time.Location
	defaultPageSize int
	logger          zerolog.Logger
}

// NewFilterResolver constructs a resolver. A nil location means UTC.
func NewFilterResolver(users repository.UserRepository, validate *validator.Validate, location *time.Location, defaultPageSize int, logger zerolog.Logger) *FilterResolver {
	if location == nil {
		location = time.UTC
	}
	if defaultPageSize <= 0 {
		defaultPageSize = fallbackPageSize
	}
	return &FilterResolver{
		users:           users,
		validator:       validate,
		location:        location,
		defaultPageSize: defaultPageSize,
		logger:          logger.With().Str("component", "report_filter").Logger(),
	}
}

// Resolve validates the criteria, resolves department and name lookups and applies
// the caller's visibility rules. Lookup failures are returned as StoreErrors.
func (r *FilterResolver) Resolve(ctx context.Context, criteria dto.ReportCriteria, caller Identity) (ResolvedFilter, error) {
	if err := r.validator.Struct(criteria); err != nil {
		return ResolvedFilter{}, validationErrorFrom(err)
	}
	if strings.TrimSpace(caller.ID) == "" {
		return ResolvedFilter{}, &ValidationError{Field: "caller", Reason: "authenticated identity is required"}
	}

	filter := ResolvedFilter{
		TemplateID: strings.TrimSpace(criteria.TemplateID),
		Status:     normalizeStatus(criteria.Status),
		Page:       criteria.Page,
		PageSize:   criteria.PageSize,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = r.defaultPageSize
	}

	from, to, err := resolveDateRange(criteria.DateFrom, criteria.DateTo, r.location)
	if err != nil {
		return ResolvedFilter{}, err
	}
	filter.From, filter.To = from, to

	owners, err := r.resolveOwners(ctx, criteria, caller)
	if err != nil {
		return ResolvedFilter{}, err
	}
	filter.OwnerIDs = owners
	filter.Empty = owners != nil && len(owners) == 0

	r.logger.Debug().
		Str("role", effectiveRole(caller.Role)).
		Int("owners", len(owners)).
		Bool("unconstrained", owners == nil).
		Bool("empty", filter.Empty).
		Msg("report filter resolved")

	return filter, nil
}

func (r *FilterResolver) resolveOwners(ctx context.Context, criteria dto.ReportCriteria, caller Identity) ([]string, error) {
	role := effectiveRole(caller.Role)
	student := strings.TrimSpace(criteria.StudentID)

	// A user's own visibility never depends on department or name lookups.
	if role == models.RoleUser {
		if student != "" && student != caller.ID {
			return []string{}, nil
		}
		return overlayVisibility(role, caller.ID, nil, nil), nil
	}

	lookups := departmentLookup{users: r.users, cache: map[string][]string{}}

	var candidates []string
	if student != "" {
		candidates = []string{student}
	}

	if department := strings.TrimSpace(criteria.Department); department != "" {
		ids, err := lookups.ids(ctx, department)
		if err != nil {
			return nil, &StoreError{Op: "resolve department", Scope: department, Err: err}
		}
		candidates = intersect(candidates, ids)
		if len(candidates) == 0 {
			return []string{}, nil
		}
	}

	if name := strings.TrimSpace(criteria.StudentName); name != "" && models.IsAdminClass(role) {
		ids, err := r.users.IDsByNameContains(ctx, name)
		if err != nil {
			return nil, &StoreError{Op: "resolve student name", Scope: name, Err: err}
		}
		candidates = intersect(candidates, ids)
		if len(candidates) == 0 {
			return []string{}, nil
		}
	}

	var scope []string
	if departmentScoped(role) {
		if department := strings.TrimSpace(caller.Department); department != "" {
			ids, err := lookups.ids(ctx, department)
			if err != nil {
				return nil, &StoreError{Op: "resolve caller department", Scope: department, Err: err}
			}
			scope = ids
		}
	}

	return overlayVisibility(role, caller.ID, candidates, scope), nil
}

// overlayVisibility applies the role rules to the criteria-derived owner set.
// resolved is nil when no criteria narrowed the owners; departmentScope holds the
// users of the caller's own department for department-scoped roles.
func overlayVisibility(role, callerID string, resolved, departmentScope []string) []string {
	switch role {
	case models.RoleAdmin, models.RoleSuperAdmin:
		return resolved
	case models.RoleDeptAdmin, models.RoleTeacher:
		if departmentScope == nil {
			departmentScope = []string{}
		}
		return intersect(resolved, departmentScope)
	default:
		return []string{callerID}
	}
}

// intersect narrows current by next. A nil current means unconstrained.
func intersect(current, next []string) []string {
	if current == nil {
		out := make([]string, 0, len(next))
		seen := make(map[string]struct{}, len(next))
		for _, id := range next {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
		return out
	}

	allowed := make(map[string]struct{}, len(next))
	for _, id := range next {
		allowed[id] = struct{}{}
	}
	out := make([]string, 0, len(current))
	for _, id := range current {
		if _, ok := allowed[id]; ok {
			out = append(out, id)
			delete(allowed, id)
		}
	}
	return out
}

// effectiveRole maps unknown roles to the least privileged one.
func effectiveRole(role string) string {
	normalized := models.NormalizeRole(role)
	if !models.IsKnownRole(normalized) {
		return models.RoleUser
	}
	return normalized
}

func departmentScoped(role string) bool {
	return role == models.RoleDeptAdmin || role == models.RoleTeacher
}

func normalizeStatus(status string) string {
	status = strings.TrimSpace(status)
	if strings.EqualFold(status, "all") {
		return ""
	}
	return strings.ToLower(status)
}

type departmentLookup struct {
	users repository.UserRepository
	cache map[string][]string
}

func (l departmentLookup) ids(ctx context.Context, department string) ([]string, error) {
	if ids, ok := l.cache[department]; ok {
		return ids, nil
	}
	ids, err := l.users.IDsByDepartment(ctx, department)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	l.cache[department] = ids
	return ids, nil
}

// resolveDateRange floors from to the start of its day and ceils to to the last
// millisecond of its day, both in loc.
func resolveDateRange(fromRaw, toRaw string, loc *time.Location) (*time.Time, *time.Time, error) {
	var from, to *time.Time

	if value := strings.TrimSpace(fromRaw); value != "" {
		day, err := parseDay(value, loc)
		if err != nil {
			return nil, nil, &ValidationError{Field: "dateRangeFrom", Reason: "must be a date (YYYY-MM-DD) or RFC3339 timestamp"}
		}
		from = &day
	}

	if value := strings.TrimSpace(toRaw); value != "" {
		day, err := parseDay(value, loc)
		if err != nil {
			return nil, nil, &ValidationError{Field: "dateRangeTo", Reason: "must be a date (YYYY-MM-DD) or RFC3339 timestamp"}
		}
		end := day.AddDate(0, 0, 1).Add(-time.Millisecond)
		to = &end
	}

	return from, to, nil
}

func parseDay(value string, loc *time.Location) (time.Time, error) {
	var parsed time.Time
	var err error
	if len(value) == len("2006-01-02") {
		parsed, err = time.ParseInLocation("2006-01-02", value, loc)
	} else {
		parsed, err = time.Parse(time.RFC3339, value)
		parsed = parsed.In(loc)
	}
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := parsed.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}
