package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/activity-report-api/internal/middleware"
	"github.com/noah-isme/activity-report-api/internal/service"
	"github.com/noah-isme/activity-report-api/internal/utils"
)

// TemplateHandler serves the activity template catalogue used by report filters.
type TemplateHandler struct {
	service service.TemplateService
	logger  zerolog.Logger
}

// NewTemplateHandler constructs a template handler.
func NewTemplateHandler(service service.TemplateService, logger zerolog.Logger) *TemplateHandler {
	return &TemplateHandler{
		service: service,
		logger:  logger.With().Str("component", "template_handler").Logger(),
	}
}

// Register wires template routes.
func (h *TemplateHandler) Register(router fiber.Router) {
	router.Get("/", middleware.WithAuth(h.list, middleware.AuthOptions{Role: middleware.AuthRoleAny, RequireUser: true}))
}

func (h *TemplateHandler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activity templates")
		return utils.Fail(c, fiber.StatusInternalServerError, "failed to fetch templates", fiber.Map{"reference": middleware.GetCorrelationID(c)})
	}

	return utils.OK(c, items, "templates retrieved", fiber.Map{"count": len(items)})
}
