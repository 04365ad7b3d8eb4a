package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/activity-report-api/internal/dto"
	"github.com/noah-isme/activity-report-api/internal/middleware"
	"github.com/noah-isme/activity-report-api/internal/service"
	"github.com/noah-isme/activity-report-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, keys ...string) (int, error) {
	for _, key := range keys {
		value := strings.TrimSpace(c.Query(key))
		if value == "" {
			continue
		}
		return strconv.Atoi(value)
	}
	return 0, nil
}

func firstQuery(c *fiber.Ctx, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(c.Query(key)); value != "" {
			return value
		}
	}
	return ""
}

// criteriaFromQuery reads report criteria, accepting the short from/to and limit aliases.
func criteriaFromQuery(c *fiber.Ctx) (dto.ReportCriteria, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return dto.ReportCriteria{}, &service.ValidationError{Field: "page", Reason: "must be an integer"}
	}
	pageSize, err := parseQueryInt(c, "pageSize", "limit")
	if err != nil {
		return dto.ReportCriteria{}, &service.ValidationError{Field: "pageSize", Reason: "must be an integer"}
	}

	return dto.ReportCriteria{
		Department:  firstQuery(c, "department"),
		Status:      firstQuery(c, "status"),
		TemplateID:  firstQuery(c, "templateId", "activityTemplateId"),
		StudentID:   firstQuery(c, "userId"),
		StudentName: firstQuery(c, "studentName"),
		DateFrom:    firstQuery(c, "dateRangeFrom", "from"),
		DateTo:      firstQuery(c, "dateRangeTo", "to"),
		Page:        page,
		PageSize:    pageSize,
	}, nil
}

func identityFromContext(c *fiber.Ctx) service.Identity {
	id, _ := c.Locals(middleware.LocalUserID).(string)
	role, _ := c.Locals(middleware.LocalUserRole).(string)
	department, _ := c.Locals(middleware.LocalUserDepartment).(string)
	return service.Identity{
		ID:         strings.TrimSpace(id),
		Role:       role,
		Department: department,
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// writeReport sends a JSON page in the standard envelope or an export as an attachment.
func writeReport(c *fiber.Ctx, out service.ReportOutput) error {
	if out.Format == service.FormatJSON {
		return utils.SendSuccess(c, "report generated", out.Page)
	}

	c.Attachment(out.Filename)
	c.Set(fiber.HeaderContentType, out.ContentType)
	return c.Status(fiber.StatusOK).Send(out.Body)
}

// reportFailure maps report engine errors to HTTP responses. Server-side failures carry
// only the correlation reference, never the underlying cause.
func reportFailure(c *fiber.Ctx, base zerolog.Logger, err error) error {
	var (
		validationErr  *service.ValidationError
		unsupportedErr *service.UnsupportedFormatError
		renderErr      *service.RenderError
		storeErr       *service.StoreError
	)

	reference := fiber.Map{"reference": middleware.GetCorrelationID(c)}
	logger := requestLogger(base, c)

	switch {
	case errors.As(err, &validationErr):
		var details interface{}
		if validationErr.Field != "" {
			details = fiber.Map{"field": validationErr.Field}
		}
		return utils.Fail(c, fiber.StatusBadRequest, validationErr.Error(), details)
	case errors.As(err, &unsupportedErr):
		return utils.Fail(c, fiber.StatusBadRequest, unsupportedErr.Error(), nil)
	case errors.Is(err, service.ErrRenderTimeout):
		logger.Error().Err(err).Msg("report rendering timed out")
		return utils.Fail(c, fiber.StatusGatewayTimeout, "report rendering timed out", reference)
	case errors.As(err, &renderErr):
		logger.Error().Err(err).Msg("report rendering failed")
		return utils.Fail(c, fiber.StatusBadGateway, "failed to render report", reference)
	case errors.As(err, &storeErr):
		logger.Error().Err(err).Str("operation", storeErr.Op).Str("scope", storeErr.Scope).Msg("report query failed")
		return utils.Fail(c, fiber.StatusInternalServerError, "failed to generate report", reference)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Warn().Err(err).Msg("report request abandoned")
		return utils.Fail(c, fiber.StatusRequestTimeout, "request cancelled", reference)
	default:
		logger.Error().Err(err).Msg("report failed")
		return utils.Fail(c, fiber.StatusInternalServerError, "failed to generate report", reference)
	}
}
