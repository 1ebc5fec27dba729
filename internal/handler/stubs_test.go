package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/luct-report-api/internal/dto"
	"github.com/noah-isme/luct-report-api/internal/middleware"
	"github.com/noah-isme/luct-report-api/internal/models"
	"github.com/noah-isme/luct-report-api/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

// authAs stands in for JWTProtected in handler tests.
func authAs(id uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUserID, id)
		c.Locals(middleware.LocalUserRole, role)
		return c.Next()
	}
}

type stubReportService struct {
	lastActor    service.Actor
	lastID       uint
	lastList     dto.ReportListRequest
	lastSubmit   dto.ReportSubmitRequest
	lastFeedback dto.FeedbackRequest
	report       dto.ReportResponse
	list         dto.ReportListResponse
	err          error
}

func (s *stubReportService) Submit(_ context.Context, actor service.Actor, payload dto.ReportSubmitRequest) (dto.ReportResponse, error) {
	s.lastActor = actor
	s.lastSubmit = payload
	return s.report, s.err
}

func (s *stubReportService) AttachFeedback(_ context.Context, actor service.Actor, reportID uint, payload dto.FeedbackRequest) (dto.ReportResponse, error) {
	s.lastActor = actor
	s.lastID = reportID
	s.lastFeedback = payload
	return s.report, s.err
}

func (s *stubReportService) ListFor(_ context.Context, actor service.Actor, req dto.ReportListRequest) (dto.ReportListResponse, error) {
	s.lastActor = actor
	s.lastList = req
	return s.list, s.err
}

func (s *stubReportService) Get(_ context.Context, actor service.Actor, reportID uint) (dto.ReportResponse, error) {
	s.lastActor = actor
	s.lastID = reportID
	return s.report, s.err
}

type stubRatingService struct {
	lastActor  service.Actor
	lastSubmit dto.RatingSubmitRequest
	lastEntity models.RatedEntity
	lastID     uint
	submit     dto.RatingSubmitResponse
	aggregate  dto.AggregateResponse
	ratings    []dto.RatingResponse
	err        error
}

func (s *stubRatingService) Submit(_ context.Context, actor service.Actor, payload dto.RatingSubmitRequest) (dto.RatingSubmitResponse, error) {
	s.lastActor = actor
	s.lastSubmit = payload
	return s.submit, s.err
}

func (s *stubRatingService) Aggregate(_ context.Context, entity models.RatedEntity, entityID uint) (dto.AggregateResponse, error) {
	s.lastEntity = entity
	s.lastID = entityID
	return s.aggregate, s.err
}

func (s *stubRatingService) ListForRater(_ context.Context, raterID uint) ([]dto.RatingResponse, error) {
	s.lastID = raterID
	return s.ratings, s.err
}

func (s *stubRatingService) ListForEntityOwner(_ context.Context, ownerID uint) ([]dto.RatingResponse, error) {
	s.lastID = ownerID
	return s.ratings, s.err
}

type stubDashboardService struct {
	lastActor    service.Actor
	lastID       uint
	lastAudit    dto.AuditListRequest
	lastOverview dto.RatingOverviewRequest
	lecturer     dto.LecturerOverviewResponse
	average      dto.AggregateResponse
	overview     dto.RatingOverviewResponse
	audit        dto.AuditListResponse
	err          error
}

func (s *stubDashboardService) LecturerOverview(_ context.Context, lecturerID uint) (dto.LecturerOverviewResponse, error) {
	s.lastID = lecturerID
	return s.lecturer, s.err
}

func (s *stubDashboardService) ReportAverage(_ context.Context, reportID uint) (dto.AggregateResponse, error) {
	s.lastID = reportID
	return s.average, s.err
}

func (s *stubDashboardService) RatingsOverview(_ context.Context, req dto.RatingOverviewRequest) (dto.RatingOverviewResponse, error) {
	s.lastOverview = req
	return s.overview, s.err
}

func (s *stubDashboardService) Monitoring(_ context.Context, actor service.Actor, req dto.AuditListRequest) (dto.AuditListResponse, error) {
	s.lastActor = actor
	s.lastAudit = req
	return s.audit, s.err
}
