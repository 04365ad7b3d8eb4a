package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/activity-report-api/internal/dto"
	"github.com/noah-isme/activity-report-api/internal/observability"
	"github.com/noah-isme/activity-report-api/internal/repository"
	"github.com/noah-isme/activity-report-api/pkg/renderer"
)

// Format is a report output representation.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// ContentType returns the HTTP content type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

// ParseFormat accepts json, csv and pdf in any case.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", &UnsupportedFormatError{Format: raw}
	}
}

// ReportRequest is one invocation of the report engine.
type ReportRequest struct {
	Scope    Scope
	Criteria dto.ReportCriteria
	Format   string
}

// ReportOutput carries either a JSON page or an export body plus transport metadata.
type ReportOutput struct {
	Format      Format
	ContentType string
	Filename    string
	Body        []byte
	Page        *dto.ReportPage
}

// ReportConfig tunes the report engine.
type ReportConfig struct {
	Location        *time.Location
	DefaultPageSize int
	Render          renderer.Budget
}

// ReportService is the single entry point for reports and exports.
type ReportService interface {
	Run(ctx context.Context, req ReportRequest, caller Identity) (ReportOutput, error)
}

type reportService struct {
	resolver  *FilterResolver
	executor  *QueryExecutor
	documents renderer.Renderer
	cfg       ReportConfig
	tracer    trace.Tracer
	logger    zerolog.Logger
	now       func() time.Time
}

// NewReportService wires the filter resolver, query executor and projections.
func NewReportService(
	users repository.UserRepository,
	templates repository.TemplateRepository,
	submissions repository.SubmissionRepository,
	documents renderer.Renderer,
	validate *validator.Validate,
	cfg ReportConfig,
	logger zerolog.Logger,
) ReportService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &reportService{
		resolver:  NewFilterResolver(users, validate, cfg.Location, cfg.DefaultPageSize, logger),
		executor:  NewQueryExecutor(submissions, users, templates),
		documents: documents,
		cfg:       cfg,
		tracer:    otel.Tracer("github.com/noah-isme/activity-report-api/internal/service"),
		logger:    logger.With().Str("component", "report_service").Logger(),
		now:       time.Now,
	}
}

func (s *reportService) Run(ctx context.Context, req ReportRequest, caller Identity) (ReportOutput, error) {
	scope := req.Scope
	if scope.Kind == "" {
		scope.Kind = ScopeFiltered
	}

	format, err := ParseFormat(req.Format)
	if err != nil {
		observability.ReportRuns().WithLabelValues("unsupported", string(scope.Kind), "rejected").Inc()
		return ReportOutput{}, err
	}

	ctx, span := s.tracer.Start(ctx, "report.run", trace.WithAttributes(
		attribute.String("report.scope", string(scope.Kind)),
		attribute.String("report.format", string(format)),
	))
	defer span.End()

	output, err := s.run(ctx, scope, format, req.Criteria, caller)
	outcome := "success"
	if err != nil {
		outcome = outcomeOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	observability.ReportRuns().WithLabelValues(string(format), string(scope.Kind), outcome).Inc()

	return output, err
}

func (s *reportService) run(ctx context.Context, scope Scope, format Format, criteria dto.ReportCriteria, caller Identity) (ReportOutput, error) {
	resolveCtx, resolveSpan := s.tracer.Start(ctx, "report.resolve")
	filter, err := s.resolver.Resolve(resolveCtx, scopedCriteria(scope, criteria), caller)
	resolveSpan.SetAttributes(
		attribute.Int("report.owners", len(filter.OwnerIDs)),
		attribute.Bool("report.empty", filter.Empty),
	)
	resolveSpan.End()
	if err != nil {
		s.logFailure(ctx, err, "resolve filter", scope)
		return ReportOutput{}, err
	}

	result := ResultSet{Rows: []ReportRow{}}
	if filter.Empty {
		observability.ReportEmptyFilters().WithLabelValues(string(scope.Kind)).Inc()
	} else {
		mode := ModeAll
		if format == FormatJSON {
			mode = ModePage
		}
		executeCtx, executeSpan := s.tracer.Start(ctx, "report.execute")
		result, err = s.executor.Execute(executeCtx, filter, mode, scope.String())
		executeSpan.SetAttributes(attribute.Int64("report.total", result.Total))
		executeSpan.End()
		if err != nil {
			s.logFailure(ctx, err, "execute query", scope)
			return ReportOutput{}, err
		}
	}

	if err := ctx.Err(); err != nil {
		return ReportOutput{}, err
	}

	start := time.Now()
	defer func() {
		observability.ReportProjectionDuration().WithLabelValues(string(format)).Observe(time.Since(start).Seconds())
	}()
	observability.ReportRows().WithLabelValues(string(format)).Observe(float64(len(result.Rows)))

	output := ReportOutput{Format: format, ContentType: format.ContentType()}

	switch format {
	case FormatJSON:
		page := projectPage(result, filter)
		output.Page = &page
	case FormatCSV:
		body, err := projectCSV(result.Rows, s.cfg.Location)
		if err != nil {
			return ReportOutput{}, err
		}
		output.Body = body
		output.Filename = scope.filename(s.now().In(s.cfg.Location), "csv")
	case FormatPDF:
		body, err := s.render(ctx, scope, filter, result.Rows)
		if err != nil {
			s.logFailure(ctx, err, "render document", scope)
			return ReportOutput{}, err
		}
		output.Body = body
		output.Filename = scope.filename(s.now().In(s.cfg.Location), "pdf")
	}

	return output, nil
}

func (s *reportService) render(ctx context.Context, scope Scope, filter ResolvedFilter, rows []ReportRow) ([]byte, error) {
	if s.documents == nil {
		return nil, &RenderError{Scope: scope.String(), Err: errors.New("no document renderer configured")}
	}

	table := projectTable(scope, filter, rows, s.now(), s.cfg.Location)

	renderCtx := ctx
	if s.cfg.Render.Timeout > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, s.cfg.Render.Timeout)
		defer cancel()
	}

	body, err := s.documents.Render(renderCtx, table, s.cfg.Render)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		timedOut := errors.Is(err, renderer.ErrTimeout) ||
			errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(renderCtx.Err(), context.DeadlineExceeded)
		return nil, &RenderError{Scope: scope.String(), Timeout: timedOut, Err: err}
	}
	if len(body) == 0 {
		return nil, &RenderError{Scope: scope.String(), Err: errors.New("renderer returned an empty document")}
	}

	return body, nil
}

func (s *reportService) logFailure(ctx context.Context, err error, op string, scope Scope) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return
	}

	logger := s.logger.With().
		Str("operation", op).
		Str("scope", scope.String()).
		Str("correlation_id", observability.CorrelationID(ctx)).
		Logger()
	if errors.Is(err, context.Canceled) {
		logger.Debug().Msg("report cancelled by caller")
		return
	}
	logger.Error().Err(err).Msg("report failed")
}

// scopedCriteria pins the scope target into the criteria so it cannot be overridden by query parameters.
func scopedCriteria(scope Scope, criteria dto.ReportCriteria) dto.ReportCriteria {
	switch scope.Kind {
	case ScopeStudent:
		criteria.StudentID = scope.Target
	case ScopeActivity:
		criteria.TemplateID = scope.Target
	case ScopeDepartment:
		criteria.Department = scope.Target
	}
	return criteria
}

func outcomeOf(err error) string {
	var (
		validationErr  *ValidationError
		storeErr       *StoreError
		renderErr      *RenderError
		unsupportedErr *UnsupportedFormatError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &unsupportedErr):
		return "rejected"
	case errors.Is(err, ErrRenderTimeout):
		return "render_timeout"
	case errors.As(err, &renderErr):
		return "render_error"
	case errors.As(err, &storeErr):
		return "store_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
