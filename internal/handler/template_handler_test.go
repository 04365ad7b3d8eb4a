package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/activity-report-api/internal/dto"
	"github.com/noah-isme/activity-report-api/internal/handler"
)

type stubTemplateService struct {
	items []dto.TemplateCatalogueItem
	err   error
}

func (s stubTemplateService) List(context.Context) ([]dto.TemplateCatalogueItem, error) {
	return s.items, s.err
}

func TestTemplateHandlerList(t *testing.T) {
	app := fiber.New()
	group := app.Group("/api/templates", asCaller("caller-1", "user", "CS"))
	handler.NewTemplateHandler(stubTemplateService{items: []dto.TemplateCatalogueItem{
		{ID: "t-1", Name: "paper_presentation", DisplayName: "paper presentation", Category: "academic", FieldCount: 4},
	}}, zerolog.Nop()).Register(group)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/templates", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := readEnvelope(t, resp)
	var items []dto.TemplateCatalogueItem
	require.NoError(t, json.Unmarshal(body.Data, &items))
	require.Len(t, items, 1)
	require.Equal(t, "paper presentation", items[0].DisplayName)
}

func TestTemplateHandlerRequiresCaller(t *testing.T) {
	app := fiber.New()
	handler.NewTemplateHandler(stubTemplateService{}, zerolog.Nop()).Register(app.Group("/api/templates"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/templates", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
