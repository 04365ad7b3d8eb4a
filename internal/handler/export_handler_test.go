package handler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/activity-report-api/internal/handler"
	"github.com/noah-isme/activity-report-api/internal/middleware"
	"github.com/noah-isme/activity-report-api/internal/service"
)

func newExportApp(svc service.ReportService, role string, limiter fiber.Handler) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/exports", asCaller("caller-1", role, "CS"))
	handler.NewExportHandler(svc, limiter, zerolog.Nop()).Register(group)
	return app
}

func pdfOutput() service.ReportOutput {
	return service.ReportOutput{
		Format:      service.FormatPDF,
		ContentType: "application/pdf",
		Filename:    "department_CS_report_20240501.pdf",
		Body:        []byte("%PDF-1.7"),
	}
}

func TestExportHandlerDepartmentPDF(t *testing.T) {
	svc := &stubReportService{out: pdfOutput()}
	app := newExportApp(svc, "deptadmin", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/exports/department/CS/pdf?page=3&pageSize=5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	require.Equal(t, `attachment; filename="department_CS_report_20240501.pdf"`, resp.Header.Get(fiber.HeaderContentDisposition))
	require.Equal(t, "8", resp.Header.Get(fiber.HeaderContentLength))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7", string(body))

	got := svc.requests[0]
	require.Equal(t, service.Scope{Kind: service.ScopeDepartment, Target: "CS"}, got.Scope)
	require.Equal(t, "pdf", got.Format)
	require.Zero(t, got.Criteria.Page)
	require.Zero(t, got.Criteria.PageSize)
}

func TestExportHandlerDepartmentFormatQuery(t *testing.T) {
	svc := &stubReportService{out: pdfOutput()}
	app := newExportApp(svc, "admin", nil)

	for query, want := range map[string]string{"": "csv", "?format=pdf": "pdf"} {
		req := httptest.NewRequest(http.MethodGet, "/api/exports/department/CS"+query, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.Equal(t, want, svc.requests[len(svc.requests)-1].Format)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/exports/department/CS?format=json", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestExportHandlerOpenToStudents(t *testing.T) {
	svc := &stubReportService{out: service.ReportOutput{Format: service.FormatCSV, ContentType: "text/csv; charset=utf-8", Filename: "student_u-1_report_20240501.csv", Body: []byte("a\n")}}
	app := newExportApp(svc, "user", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/exports/student/u-1/csv", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/exports/csv", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, svc.requests, 2)
	require.Equal(t, service.Scope{Kind: service.ScopeFiltered}, svc.requests[1].Scope)
}

func TestExportHandlerRateLimited(t *testing.T) {
	svc := &stubReportService{out: pdfOutput()}
	app := newExportApp(svc, "admin", middleware.RateLimit("exports", 1, time.Minute, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/exports/pdf", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/exports/pdf", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	require.Len(t, svc.requests, 1)
}
