package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/luct-report-api/internal/dto"
	"github.com/noah-isme/luct-report-api/internal/models"
	"github.com/noah-isme/luct-report-api/internal/repository"
)

type dashboardHarness struct {
	reports   ReportService
	ratings   RatingService
	dashboard DashboardService
	fixture   directoryFixture
}

func newDashboardHarness(t *testing.T) dashboardHarness {
	t.Helper()
	db := setupTestDB(t)
	fixture := seedDirectory(t, db)
	validate := testValidator()

	reportRepo := repository.NewReportRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	directory := repository.NewDirectoryRepository(db)
	audit := newClockedAuditService(t, repository.NewAuditRepository(db), AuditFanout{}, 20)

	return dashboardHarness{
		reports:   NewReportService(reportRepo, directory, validate, audit, testLogger()),
		ratings:   NewRatingService(ratingRepo, validate, audit, testLogger()),
		dashboard: NewDashboardService(reportRepo, ratingRepo, directory, audit, validate, testLogger()),
		fixture:   fixture,
	}
}

func (h dashboardHarness) submitReport(t *testing.T, topic string) dto.ReportResponse {
	t.Helper()
	report, err := h.reports.Submit(context.Background(), actorFor(h.fixture.lecturer), dto.ReportSubmitRequest{
		ClassID:               h.fixture.class.ID,
		WeekOfReporting:       "Week 6",
		DateOfLecture:         "2025-03-24",
		TopicTaught:           topic,
		ActualStudentsPresent: ptrInt(55),
		LearningOutcomes:      "Applied the technique",
		Recommendations:       "Extra tutorial",
	})
	require.NoError(t, err)
	return report
}

func TestDashboardLecturerOverview(t *testing.T) {
	h := newDashboardHarness(t)
	ctx := context.Background()
	report := h.submitReport(t, "Dynamic programming")

	student := actorFor(h.fixture.student)
	_, err := h.ratings.Submit(ctx, student, dto.RatingSubmitRequest{RatedEntity: "class", EntityID: h.fixture.class.ID, Value: 5})
	require.NoError(t, err)
	_, err = h.ratings.Submit(ctx, actorFor(h.fixture.prl), dto.RatingSubmitRequest{RatedEntity: "class", EntityID: h.fixture.class.ID, Value: 3})
	require.NoError(t, err)
	_, err = h.ratings.Submit(ctx, student, dto.RatingSubmitRequest{RatedEntity: "lecture", EntityID: report.ID, Value: 4})
	require.NoError(t, err)

	overview, err := h.dashboard.LecturerOverview(ctx, h.fixture.lecturer.ID)
	require.NoError(t, err)
	require.Equal(t, h.fixture.lecturer.ID, overview.LecturerID)

	require.Len(t, overview.Classes, 1)
	require.Equal(t, "BSCSM Y2", overview.Classes[0].ClassName)
	require.Equal(t, "Data Structures", overview.Classes[0].CourseName)
	require.Equal(t, 4.0, overview.Classes[0].Average)
	require.Equal(t, int64(2), overview.Classes[0].Count)

	require.Len(t, overview.Lectures, 1)
	require.Equal(t, report.ID, overview.Lectures[0].ReportID)
	require.Equal(t, models.ReportStatusSubmitted, overview.Lectures[0].Status)
	require.Equal(t, 4.0, overview.Lectures[0].Average)
	require.Equal(t, int64(1), overview.Lectures[0].Count)

	empty, err := h.dashboard.LecturerOverview(ctx, h.fixture.otherLecturer.ID)
	require.NoError(t, err)
	require.Empty(t, empty.Classes)
	require.Empty(t, empty.Lectures)
}

func TestDashboardReportAverage(t *testing.T) {
	h := newDashboardHarness(t)
	ctx := context.Background()
	report := h.submitReport(t, "Greedy algorithms")

	average, err := h.dashboard.ReportAverage(ctx, report.ID)
	require.NoError(t, err)
	require.Equal(t, models.RatedEntityLecture, average.RatedEntity)
	require.Zero(t, average.Count)

	_, err = h.ratings.Submit(ctx, actorFor(h.fixture.student), dto.RatingSubmitRequest{RatedEntity: "lecture", EntityID: report.ID, Value: 2})
	require.NoError(t, err)

	average, err = h.dashboard.ReportAverage(ctx, report.ID)
	require.NoError(t, err)
	require.Equal(t, 2.0, average.Average)
	require.Equal(t, int64(1), average.Count)

	_, err = h.dashboard.ReportAverage(ctx, report.ID+10)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDashboardRatingsOverviewJoinsNames(t *testing.T) {
	h := newDashboardHarness(t)
	ctx := context.Background()
	report := h.submitReport(t, "Backtracking")

	_, err := h.ratings.Submit(ctx, actorFor(h.fixture.student), dto.RatingSubmitRequest{RatedEntity: "lecture", EntityID: report.ID, Value: 5, Comment: "engaging"})
	require.NoError(t, err)
	_, err = h.ratings.Submit(ctx, actorFor(h.fixture.student), dto.RatingSubmitRequest{RatedEntity: "class", EntityID: h.fixture.class.ID, Value: 3})
	require.NoError(t, err)

	overview, err := h.dashboard.RatingsOverview(ctx, dto.RatingOverviewRequest{PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), overview.Pagination.TotalItems)
	require.Len(t, overview.Items, 2)
	for _, item := range overview.Items {
		require.Equal(t, "Karabo Sello", item.RaterName)
		require.Equal(t, "BSCSM Y2", item.ClassName)
		require.Equal(t, "Lerato Mokoena", item.LecturerName)
		require.Equal(t, int64(1), item.Count)
		require.Equal(t, float64(item.Value), item.Average)
	}

	lectures, err := h.dashboard.RatingsOverview(ctx, dto.RatingOverviewRequest{RatedEntity: "lecture"})
	require.NoError(t, err)
	require.Len(t, lectures.Items, 1)
	require.Equal(t, "engaging", lectures.Items[0].Comment)

	_, err = h.dashboard.RatingsOverview(ctx, dto.RatingOverviewRequest{RatedEntity: "course"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestDashboardRatingsOverviewForOneEntity(t *testing.T) {
	h := newDashboardHarness(t)
	ctx := context.Background()
	first := h.submitReport(t, "Sorting networks")
	second := h.submitReport(t, "Union find")

	_, err := h.ratings.Submit(ctx, actorFor(h.fixture.student), dto.RatingSubmitRequest{RatedEntity: "lecture", EntityID: first.ID, Value: 5})
	require.NoError(t, err)
	_, err = h.ratings.Submit(ctx, actorFor(h.fixture.prl), dto.RatingSubmitRequest{RatedEntity: "lecture", EntityID: first.ID, Value: 2})
	require.NoError(t, err)
	_, err = h.ratings.Submit(ctx, actorFor(h.fixture.student), dto.RatingSubmitRequest{RatedEntity: "lecture", EntityID: second.ID, Value: 4})
	require.NoError(t, err)
	_, err = h.ratings.Submit(ctx, actorFor(h.fixture.student), dto.RatingSubmitRequest{RatedEntity: "class", EntityID: first.ID, Value: 1})
	require.NoError(t, err)

	overview, err := h.dashboard.RatingsOverview(ctx, dto.RatingOverviewRequest{RatedEntity: "lecture", EntityID: first.ID})
	require.NoError(t, err)
	require.Equal(t, int64(2), overview.Pagination.TotalItems)
	names := make([]string, 0, len(overview.Items))
	for _, item := range overview.Items {
		require.Equal(t, first.ID, item.EntityID)
		require.Equal(t, models.RatedEntityLecture, item.RatedEntity)
		require.Equal(t, 3.5, item.Average)
		names = append(names, item.RaterName)
	}
	require.ElementsMatch(t, []string{"Karabo Sello", "Palesa Letsie"}, names)

	_, err = h.dashboard.RatingsOverview(ctx, dto.RatingOverviewRequest{EntityID: first.ID})
	require.ErrorIs(t, err, ErrValidation)
}

func TestDashboardMonitoringScopesByRole(t *testing.T) {
	h := newDashboardHarness(t)
	ctx := context.Background()
	report := h.submitReport(t, "Graph colouring")

	_, err := h.reports.AttachFeedback(ctx, actorFor(h.fixture.prl), report.ID, dto.FeedbackRequest{Feedback: "Solid"})
	require.NoError(t, err)
	_, err = h.reports.AttachFeedback(ctx, actorFor(h.fixture.pl), report.ID, dto.FeedbackRequest{Feedback: "Approved"})
	require.NoError(t, err)

	prlView, err := h.dashboard.Monitoring(ctx, actorFor(h.fixture.prl), dto.AuditListRequest{Role: "pl", PageSize: 10})
	require.NoError(t, err)
	require.Len(t, prlView.Items, 1)
	require.Equal(t, models.RolePRL, prlView.Items[0].ActorRole)
	require.Equal(t, "Palesa Letsie", prlView.Items[0].ActorName)

	plView, err := h.dashboard.Monitoring(ctx, actorFor(h.fixture.pl), dto.AuditListRequest{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, plView.Items, 3)
	require.Equal(t, models.AuditActionGaveFeedback, plView.Items[0].Action)
	require.Equal(t, "Mpho Ramaili", plView.Items[0].ActorName)
	require.Equal(t, models.AuditActionSubmittedReport, plView.Items[2].Action)

	other := h.submitReport(t, "Shortest paths")
	require.NotZero(t, other.ID)

	lecturerView, err := h.dashboard.Monitoring(ctx, actorFor(h.fixture.lecturer), dto.AuditListRequest{Role: "pl", ActorID: h.fixture.pl.ID, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, lecturerView.Items, 2)
	for _, item := range lecturerView.Items {
		require.Equal(t, h.fixture.lecturer.ID, item.ActorID)
		require.Equal(t, models.AuditActionSubmittedReport, item.Action)
		require.Equal(t, "Lerato Mokoena", item.ActorName)
	}

	otherView, err := h.dashboard.Monitoring(ctx, actorFor(h.fixture.otherLecturer), dto.AuditListRequest{PageSize: 10})
	require.NoError(t, err)
	require.Empty(t, otherView.Items)

	_, err = h.dashboard.Monitoring(ctx, actorFor(h.fixture.student), dto.AuditListRequest{})
	require.ErrorIs(t, err, ErrForbidden)
}
