package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/luct-report-api/internal/dto"
	"github.com/noah-isme/luct-report-api/internal/models"
	"github.com/noah-isme/luct-report-api/internal/observability"
	"github.com/noah-isme/luct-report-api/internal/repository"
)

// ReportService drives the lecture report review workflow.
type ReportService interface {
	Submit(ctx context.Context, actor Actor, payload dto.ReportSubmitRequest) (dto.ReportResponse, error)
	AttachFeedback(ctx context.Context, actor Actor, reportID uint, payload dto.FeedbackRequest) (dto.ReportResponse, error)
	ListFor(ctx context.Context, actor Actor, req dto.ReportListRequest) (dto.ReportListResponse, error)
	Get(ctx context.Context, actor Actor, reportID uint) (dto.ReportResponse, error)
}

type reportService struct {
	reports   repository.ReportRepository
	directory repository.DirectoryRepository
	validator *validator.Validate
	audit     AuditRecorder
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewReportService constructs the report lifecycle engine.
func NewReportService(reports repository.ReportRepository, directory repository.DirectoryRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) ReportService {
	return &reportService{
		reports:   reports,
		directory: directory,
		validator: validate,
		audit:     audit,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "report_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/luct-report-api/internal/service/report"),
		now:       time.Now,
	}
}

func (s *reportService) Submit(ctx context.Context, actor Actor, payload dto.ReportSubmitRequest) (dto.ReportResponse, error) {
	if !actor.Is(models.RoleLecturer) {
		return dto.ReportResponse{}, forbiddenError("only lecturers can submit reports")
	}

	payload.WeekOfReporting = strings.TrimSpace(payload.WeekOfReporting)
	payload.DateOfLecture = strings.TrimSpace(payload.DateOfLecture)
	payload.TopicTaught = plainText(s.sanitizer, payload.TopicTaught)
	payload.LearningOutcomes = plainText(s.sanitizer, payload.LearningOutcomes)
	payload.Recommendations = plainText(s.sanitizer, payload.Recommendations)

	if err := validateStruct(s.validator, payload); err != nil {
		return dto.ReportResponse{}, err
	}

	lectureDate, err := time.Parse(dto.DateLayout, payload.DateOfLecture)
	if err != nil {
		return dto.ReportResponse{}, validationError("date_of_lecture must use YYYY-MM-DD")
	}

	class, err := s.directory.GetClass(ctx, payload.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReportResponse{}, validationError("class %d does not exist", payload.ClassID)
		}
		return dto.ReportResponse{}, storageError(err)
	}

	report := models.Report{
		ClassID:               class.ID,
		LecturerID:            actor.ID,
		WeekOfReporting:       payload.WeekOfReporting,
		DateOfLecture:         lectureDate,
		TopicTaught:           payload.TopicTaught,
		ActualStudentsPresent: *payload.ActualStudentsPresent,
		LearningOutcomes:      payload.LearningOutcomes,
		Recommendations:       payload.Recommendations,
		CreatedAt:             s.now().UTC(),
	}

	if err := s.reports.Create(ctx, &report); err != nil {
		s.logger.Error().Err(err).Uint("class_id", class.ID).Msg("failed to persist report")
		return dto.ReportResponse{}, storageError(err)
	}
	report.Class = class

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     models.AuditActionSubmittedReport,
		Target:     fmt.Sprintf("report #%d for %s, week %s: %s", report.ID, class.ClassName, report.WeekOfReporting, report.TopicTaught),
		EntityType: "report",
		EntityID:   &report.ID,
		Metadata: map[string]interface{}{
			"class_id": class.ID,
			"week":     report.WeekOfReporting,
		},
	})

	return dto.NewReportResponse(report), nil
}

func (s *reportService) AttachFeedback(ctx context.Context, actor Actor, reportID uint, payload dto.FeedbackRequest) (dto.ReportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "report.attach_feedback")
	span.SetAttributes(
		attribute.Int64("report.id", int64(reportID)),
		attribute.Int64("report.actor_id", int64(actor.ID)),
		attribute.String("report.actor_role", string(actor.Role)),
	)
	defer span.End()

	if !actor.Role.IsReviewer() {
		observability.FeedbackAttached().WithLabelValues(string(actor.Role), "forbidden").Inc()
		span.SetStatus(codes.Error, "forbidden")
		return dto.ReportResponse{}, forbiddenError("role %q cannot give report feedback", actor.Role)
	}

	payload.Feedback = plainText(s.sanitizer, payload.Feedback)
	if err := validateStruct(s.validator, payload); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ReportResponse{}, err
	}

	exists, err := s.reports.Exists(ctx, reportID)
	if err != nil {
		span.RecordError(err)
		return dto.ReportResponse{}, storageError(err)
	}
	if !exists {
		span.SetStatus(codes.Error, "report_not_found")
		return dto.ReportResponse{}, notFoundError("report")
	}

	slot := models.ReportFeedback{
		ReportID:  reportID,
		Role:      actor.Role,
		AuthorID:  actor.ID,
		Text:      payload.Feedback,
		CreatedAt: s.now().UTC(),
	}

	written, err := s.reports.InsertFeedback(ctx, &slot)
	if err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).Uint("report_id", reportID).Msg("failed to write feedback slot")
		return dto.ReportResponse{}, storageError(err)
	}
	if !written {
		observability.FeedbackAttached().WithLabelValues(string(actor.Role), "conflict").Inc()
		span.SetStatus(codes.Error, "feedback_already_submitted")
		return dto.ReportResponse{}, ErrFeedbackAlreadySubmitted
	}
	observability.FeedbackAttached().WithLabelValues(string(actor.Role), "written").Inc()

	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		span.RecordError(err)
		return dto.ReportResponse{}, storageError(err)
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     models.AuditActionGaveFeedback,
		Target:     fmt.Sprintf("%s feedback on report #%d (%s)", strings.ToUpper(string(actor.Role)), report.ID, report.TopicTaught),
		EntityType: "report",
		EntityID:   &report.ID,
		Metadata: map[string]interface{}{
			"lecturer_id": report.LecturerID,
			"status":      string(report.Status()),
		},
	})

	span.SetAttributes(attribute.String("report.status", string(report.Status())))

	return dto.NewReportResponse(report), nil
}

func (s *reportService) ListFor(ctx context.Context, actor Actor, req dto.ReportListRequest) (dto.ReportListResponse, error) {
	filter := repository.ReportFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	switch {
	case actor.Is(models.RoleLecturer):
		lecturerID := actor.ID
		filter.LecturerID = &lecturerID
	case actor.Role.IsReviewer():
	default:
		return dto.ReportListResponse{}, forbiddenError("role %q cannot view reports", actor.Role)
	}

	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := validateStruct(s.validator, req); err != nil {
		return dto.ReportListResponse{}, err
	}
	filter.Status = models.ReportStatus(req.Status)

	reports, total, err := s.reports.List(ctx, filter)
	if err != nil {
		return dto.ReportListResponse{}, storageError(err)
	}

	items := make([]dto.ReportResponse, 0, len(reports))
	for _, report := range reports {
		items = append(items, dto.NewReportResponse(report))
	}

	return dto.ReportListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *reportService) Get(ctx context.Context, actor Actor, reportID uint) (dto.ReportResponse, error) {
	if !actor.Is(models.RoleLecturer) && !actor.Role.IsReviewer() {
		return dto.ReportResponse{}, forbiddenError("role %q cannot view reports", actor.Role)
	}

	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReportResponse{}, notFoundError("report")
		}
		return dto.ReportResponse{}, storageError(err)
	}

	if actor.Is(models.RoleLecturer) && report.LecturerID != actor.ID {
		return dto.ReportResponse{}, forbiddenError("report belongs to another lecturer")
	}

	return dto.NewReportResponse(report), nil
}
