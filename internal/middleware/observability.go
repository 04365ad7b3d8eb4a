package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/activity-report-api/internal/observability"
)

// Observability records request metrics for the report surfaces (reports, exports,
// templates) and writes one structured line per request. Other paths pass through.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()
	logger = logger.With().Str("component", "http").Logger()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		surface := reportSurface(c.Path())
		if surface == "" {
			return err
		}

		duration := time.Since(start)
		route := routeTemplate(c)
		method := c.Method()
		status := c.Response().StatusCode()
		statusLabel := strconv.Itoa(status)

		observability.ReportRequests().WithLabelValues(method, route, statusLabel).Inc()
		observability.ReportLatency().WithLabelValues(method, route).Observe(duration.Seconds())
		if status >= fiber.StatusBadRequest {
			observability.ReportErrors().WithLabelValues(method, route, statusLabel).Inc()
		}

		event := logger.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			event = logger.Error()
		case status >= fiber.StatusBadRequest:
			event = logger.Warn()
		}

		event.
			Str("correlation_id", GetCorrelationID(c)).
			Str("surface", surface).
			Str("route", route).
			Str("method", method).
			Str("role", callerRole(c)).
			Int("status", status).
			Int("bytes", len(c.Response().Body())).
			Dur("latency", duration).
			Str("latency_bucket", latencyBucket(duration)).
			Msg("report request completed")

		return err
	}
}

func reportSurface(path string) string {
	for _, surface := range []string{"reports", "exports", "templates"} {
		prefix := "/api/" + surface
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return surface
		}
	}
	return ""
}

func routeTemplate(c *fiber.Ctx) string {
	if route := c.Route(); route != nil && route.Path != "" {
		return route.Path
	}
	return c.Path()
}

// latencyBucket groups durations for log queries; the upper buckets cover document rendering.
func latencyBucket(duration time.Duration) string {
	bounds := []time.Duration{50 * time.Millisecond, 250 * time.Millisecond, time.Second, 5 * time.Second, 30 * time.Second}
	for _, bound := range bounds {
		if duration <= bound {
			return "<=" + bound.String()
		}
	}
	return ">30s"
}
