package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/activity-report-api/internal/config"
	"github.com/noah-isme/activity-report-api/internal/handler"
)

func TestHealthCheckReportsProbes(t *testing.T) {
	cfg := config.Config{AppName: "Activity Report API", AppEnv: "test"}

	healthy := fiber.New()
	healthy.Get("/health", handler.HealthCheck(cfg, handler.HealthProbe{Name: "database", Check: func(context.Context) error { return nil }}))
	resp, err := healthy.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	degraded := fiber.New()
	degraded.Get("/health", handler.HealthCheck(cfg, handler.HealthProbe{Name: "database", Check: func(context.Context) error { return errors.New("down") }}))
	resp, err = degraded.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	body := readEnvelope(t, resp)
	require.Contains(t, string(body.Data), `"database":"unavailable"`)
}
