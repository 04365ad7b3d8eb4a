package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/activity-report-api/internal/service"
)

// ExportHandler exposes CSV and PDF downloads.
type ExportHandler struct {
	service service.ReportService
	limiter fiber.Handler
	logger  zerolog.Logger
}

// NewExportHandler constructs an export handler. limiter may be nil.
func NewExportHandler(service service.ReportService, limiter fiber.Handler, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		service: service,
		limiter: limiter,
		logger:  logger.With().Str("component", "export_handler").Logger(),
	}
}

// Register wires export routes.
func (h *ExportHandler) Register(router fiber.Router) {
	if h.limiter != nil {
		router.Use(h.limiter)
	}
	router.Get("/student/:userId/csv", h.export(service.ScopeStudent, "userId", service.FormatCSV))
	router.Get("/department/:dept/pdf", h.export(service.ScopeDepartment, "dept", service.FormatPDF))
	router.Get("/department/:dept", h.export(service.ScopeDepartment, "dept", ""))
	router.Get("/csv", h.export(service.ScopeFiltered, "", service.FormatCSV))
	router.Get("/pdf", h.export(service.ScopeFiltered, "", service.FormatPDF))
}

// export builds a handler for one route. An empty format reads ?format=, defaulting to CSV.
func (h *ExportHandler) export(kind service.ScopeKind, param string, format service.Format) fiber.Handler {
	return func(c *fiber.Ctx) error {
		criteria, err := criteriaFromQuery(c)
		if err != nil {
			return reportFailure(c, h.logger, err)
		}
		// Exports never paginate.
		criteria.Page, criteria.PageSize = 0, 0

		requested := string(format)
		if requested == "" {
			requested = c.Query("format", string(service.FormatCSV))
		}
		if requested == string(service.FormatJSON) {
			return reportFailure(c, h.logger, &service.UnsupportedFormatError{Format: requested})
		}

		scope := service.Scope{Kind: kind}
		if param != "" {
			scope.Target = c.Params(param)
		}

		out, err := h.service.Run(c.UserContext(), service.ReportRequest{
			Scope:    scope,
			Criteria: criteria,
			Format:   requested,
		}, identityFromContext(c))
		if err != nil {
			return reportFailure(c, h.logger, err)
		}

		requestLogger(h.logger, c).Info().
			Str("scope", scope.String()).
			Str("format", string(out.Format)).
			Int("bytes", len(out.Body)).
			Msg("export generated")
		return writeReport(c, out)
	}
}
