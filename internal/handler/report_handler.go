package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/activity-report-api/internal/service"
)

// ReportHandler exposes the interactive report endpoints.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs a report handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register wires report routes. Every route is open to any authenticated caller; the
// filter resolver narrows the rows to what the caller's role may see.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/student/:userId", h.scoped(service.ScopeStudent, "userId"))
	router.Get("/activity/:templateId", h.scoped(service.ScopeActivity, "templateId"))
	router.Get("/department/:dept", h.scoped(service.ScopeDepartment, "dept"))
	router.Get("/filtered", h.filtered)
}

func (h *ReportHandler) scoped(kind service.ScopeKind, param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		criteria, err := criteriaFromQuery(c)
		if err != nil {
			return reportFailure(c, h.logger, err)
		}

		req := service.ReportRequest{
			Scope:    service.Scope{Kind: kind, Target: c.Params(param)},
			Criteria: criteria,
			Format:   string(service.FormatJSON),
		}
		return h.run(c, req)
	}
}

func (h *ReportHandler) filtered(c *fiber.Ctx) error {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		return reportFailure(c, h.logger, err)
	}

	format := c.Query("format", string(service.FormatJSON))
	return h.run(c, service.ReportRequest{
		Scope:    service.Scope{Kind: service.ScopeFiltered},
		Criteria: criteria,
		Format:   format,
	})
}

func (h *ReportHandler) run(c *fiber.Ctx, req service.ReportRequest) error {
	out, err := h.service.Run(c.UserContext(), req, identityFromContext(c))
	if err != nil {
		return reportFailure(c, h.logger, err)
	}
	return writeReport(c, out)
}
