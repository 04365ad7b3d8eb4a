package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/noah-isme/activity-report-api/internal/observability"
)

const (
	// HeaderCorrelationID carries the correlation identifier on requests and responses.
	HeaderCorrelationID = "X-Correlation-ID"
	// LocalCorrelationID is the fiber local holding the request correlation identifier.
	LocalCorrelationID = "correlation_id"

	maxCorrelationIDLength = 128
)

// CorrelationID reuses the caller's X-Correlation-ID (or X-Request-ID) and mints a UUID
// otherwise. The identifier is echoed back and bound to the request's user context so
// report failures logged deep in the service can be matched with the error reference.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(HeaderCorrelationID))
		if id == "" {
			id = strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
		}
		if id == "" || len(id) > maxCorrelationIDLength {
			id = uuid.NewString()
		}

		c.Locals(LocalCorrelationID, id)
		c.Set(HeaderCorrelationID, id)
		c.SetUserContext(observability.WithCorrelationID(c.UserContext(), id))

		return c.Next()
	}
}

// GetCorrelationID returns the correlation identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(LocalCorrelationID).(string); ok && id != "" {
		return id
	}
	return observability.CorrelationID(c.UserContext())
}
