package handler_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/luct-report-api/internal/dto"
	"github.com/noah-isme/luct-report-api/internal/handler"
	"github.com/noah-isme/luct-report-api/internal/models"
	"github.com/noah-isme/luct-report-api/internal/service"
)

func reportApp(reports *stubReportService, dashboard *stubDashboardService, id uint, role string) *fiber.App {
	app := fiber.New()
	handler.NewReportHandler(reports, dashboard, zerolog.Nop()).Register(app.Group("/api/v1/reports", authAs(id, role)))
	return app
}

func TestReportHandlerSubmit(t *testing.T) {
	reports := &stubReportService{report: dto.ReportResponse{ID: 3, TopicTaught: "Recursion", Status: models.ReportStatusSubmitted}}
	app := reportApp(reports, &stubDashboardService{}, 9, "lecturer")

	body := `{"class_id":4,"week_of_reporting":"Week 3","date_of_lecture":"2025-03-03","topic_taught":"Recursion","actual_students_present":0,"learning_outcomes":"x","recommendations":"y"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload envelope
	decodeResponse(t, resp, &payload)
	require.True(t, payload.Success)
	require.Equal(t, "report submitted", payload.Message)

	var report dto.ReportResponse
	require.NoError(t, json.Unmarshal(payload.Data, &report))
	require.Equal(t, uint(3), report.ID)

	require.Equal(t, service.Actor{ID: 9, Role: models.RoleLecturer}, reports.lastActor)
	require.Equal(t, uint(4), reports.lastSubmit.ClassID)
	require.NotNil(t, reports.lastSubmit.ActualStudentsPresent)
	require.Zero(t, *reports.lastSubmit.ActualStudentsPresent)
}

func TestReportHandlerSubmitRejectsReviewers(t *testing.T) {
	reports := &stubReportService{}
	app := reportApp(reports, &stubDashboardService{}, 2, "prl")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Zero(t, reports.lastActor.ID)
}

func TestReportHandlerFeedbackStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"conflict", service.ErrFeedbackAlreadySubmitted, fiber.StatusConflict, "conflict"},
		{"not found", fmt.Errorf("%w: report", service.ErrNotFound), fiber.StatusNotFound, "not_found"},
		{"validation", fmt.Errorf("%w: feedback required", service.ErrValidation), fiber.StatusBadRequest, "validation"},
		{"storage", fmt.Errorf("%w: %w", service.ErrStorage, errors.New("db down")), fiber.StatusServiceUnavailable, "storage"},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		reports := &stubReportService{err: tc.err}
		app := reportApp(reports, &stubDashboardService{}, 5, "pl")

		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/12/feedback", strings.NewReader(`{"feedback":"Approved"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, tc.status, resp.StatusCode, tc.name)

		var payload envelope
		decodeResponse(t, resp, &payload)
		require.False(t, payload.Success, tc.name)
		require.Equal(t, tc.kind, payload.Error, tc.name)
		require.Equal(t, uint(12), reports.lastID, tc.name)
		require.Equal(t, "Approved", reports.lastFeedback.Feedback, tc.name)
	}
}

func TestReportHandlerFeedbackForbiddenForStudents(t *testing.T) {
	reports := &stubReportService{}
	app := reportApp(reports, &stubDashboardService{}, 5, "student")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/12/feedback", strings.NewReader(`{"feedback":"Nice"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var payload envelope
	decodeResponse(t, resp, &payload)
	require.Equal(t, "forbidden", payload.Error)
}

func TestReportHandlerListPassesPaging(t *testing.T) {
	reports := &stubReportService{list: dto.ReportListResponse{Items: []dto.ReportResponse{{ID: 1}}}}
	app := reportApp(reports, &stubDashboardService{}, 2, "prl")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/reports?page=2&page_size=500&status=prl_reviewed", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 2, reports.lastList.Page)
	require.Equal(t, 100, reports.lastList.PageSize)
	require.Equal(t, "prl_reviewed", reports.lastList.Status)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/reports?page=oops", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestReportHandlerGetAndAverage(t *testing.T) {
	reports := &stubReportService{report: dto.ReportResponse{ID: 8}}
	dashboard := &stubDashboardService{average: dto.AggregateResponse{RatedEntity: models.RatedEntityLecture, EntityID: 8, Average: 3.5, Count: 2}}
	app := reportApp(reports, dashboard, 1, "student")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/reports/8/average", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(8), dashboard.lastID)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/reports/8", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	lecturerApp := reportApp(reports, dashboard, 1, "lecturer")
	resp, err = lecturerApp.Test(httptest.NewRequest(http.MethodGet, "/api/v1/reports/abc", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
