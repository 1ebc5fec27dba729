package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/luct-report-api/internal/dto"
	"github.com/noah-isme/luct-report-api/internal/models"
	"github.com/noah-isme/luct-report-api/internal/repository"
)

// DashboardService composes read-only views over reports, ratings, and the audit trail.
type DashboardService interface {
	LecturerOverview(ctx context.Context, lecturerID uint) (dto.LecturerOverviewResponse, error)
	ReportAverage(ctx context.Context, reportID uint) (dto.AggregateResponse, error)
	RatingsOverview(ctx context.Context, req dto.RatingOverviewRequest) (dto.RatingOverviewResponse, error)
	Monitoring(ctx context.Context, actor Actor, req dto.AuditListRequest) (dto.AuditListResponse, error)
}

type dashboardService struct {
	reports   repository.ReportRepository
	ratings   repository.RatingRepository
	directory repository.DirectoryRepository
	audit     AuditService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewDashboardService constructs the query façade.
func NewDashboardService(reports repository.ReportRepository, ratings repository.RatingRepository, directory repository.DirectoryRepository, audit AuditService, validate *validator.Validate, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		reports:   reports,
		ratings:   ratings,
		directory: directory,
		audit:     audit,
		validator: validate,
		logger:    logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func (s *dashboardService) LecturerOverview(ctx context.Context, lecturerID uint) (dto.LecturerOverviewResponse, error) {
	classes, err := s.directory.ListClassesByLecturer(ctx, lecturerID)
	if err != nil {
		return dto.LecturerOverviewResponse{}, storageError(err)
	}

	classIDs := make([]uint, 0, len(classes))
	for _, class := range classes {
		classIDs = append(classIDs, class.ID)
	}
	classAggregates, err := s.ratings.AggregateMany(ctx, models.RatedEntityClass, classIDs)
	if err != nil {
		return dto.LecturerOverviewResponse{}, storageError(err)
	}

	lecturer := lecturerID
	reports, _, err := s.reports.List(ctx, repository.ReportFilter{LecturerID: &lecturer})
	if err != nil {
		return dto.LecturerOverviewResponse{}, storageError(err)
	}

	reportIDs := make([]uint, 0, len(reports))
	for _, report := range reports {
		reportIDs = append(reportIDs, report.ID)
	}
	lectureAggregates, err := s.ratings.AggregateMany(ctx, models.RatedEntityLecture, reportIDs)
	if err != nil {
		return dto.LecturerOverviewResponse{}, storageError(err)
	}

	response := dto.LecturerOverviewResponse{
		LecturerID: lecturerID,
		Classes:    make([]dto.ClassRatingSummary, 0, len(classes)),
		Lectures:   make([]dto.LectureRatingSummary, 0, len(reports)),
	}

	for _, class := range classes {
		aggregate := classAggregates[class.ID]
		response.Classes = append(response.Classes, dto.ClassRatingSummary{
			ClassID:       class.ID,
			ClassName:     class.ClassName,
			CourseName:    class.Course.Name,
			CourseCode:    class.Course.Code,
			Venue:         class.Venue,
			ScheduledTime: class.ScheduledTime,
			Average:       aggregate.Average,
			Count:         aggregate.Count,
		})
	}

	for _, report := range reports {
		aggregate := lectureAggregates[report.ID]
		response.Lectures = append(response.Lectures, dto.LectureRatingSummary{
			ReportID:        report.ID,
			ClassID:         report.ClassID,
			WeekOfReporting: report.WeekOfReporting,
			TopicTaught:     report.TopicTaught,
			Status:          report.Status(),
			Average:         aggregate.Average,
			Count:           aggregate.Count,
		})
	}

	return response, nil
}

func (s *dashboardService) ReportAverage(ctx context.Context, reportID uint) (dto.AggregateResponse, error) {
	exists, err := s.reports.Exists(ctx, reportID)
	if err != nil {
		return dto.AggregateResponse{}, storageError(err)
	}
	if !exists {
		return dto.AggregateResponse{}, notFoundError("report")
	}

	aggregate, err := s.ratings.Aggregate(ctx, models.RatedEntityLecture, reportID)
	if err != nil {
		return dto.AggregateResponse{}, storageError(err)
	}

	return dto.NewAggregateResponse(models.RatedEntityLecture, reportID, aggregate), nil
}

func (s *dashboardService) RatingsOverview(ctx context.Context, req dto.RatingOverviewRequest) (dto.RatingOverviewResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return dto.RatingOverviewResponse{}, err
	}
	if req.EntityID > 0 && req.RatedEntity == "" {
		return dto.RatingOverviewResponse{}, validationError("rated_entity is required with entity_id")
	}

	rows, total, err := s.ratings.ListOverview(ctx, repository.RatingOverviewFilter{
		Page:        req.Page,
		PageSize:    req.PageSize,
		RatedEntity: models.RatedEntity(req.RatedEntity),
		EntityID:    req.EntityID,
	})
	if err != nil {
		return dto.RatingOverviewResponse{}, storageError(err)
	}

	partitions := map[models.RatedEntity][]uint{}
	for _, row := range rows {
		partitions[row.RatedEntity] = append(partitions[row.RatedEntity], row.EntityID)
	}

	aggregates := make(map[models.RatedEntity]map[uint]models.AggregateRating, len(partitions))
	for entity, ids := range partitions {
		byID, err := s.ratings.AggregateMany(ctx, entity, ids)
		if err != nil {
			return dto.RatingOverviewResponse{}, storageError(err)
		}
		aggregates[entity] = byID
	}

	items := make([]dto.RatingOverviewItem, 0, len(rows))
	for _, row := range rows {
		aggregate := aggregates[row.RatedEntity][row.EntityID]
		items = append(items, dto.RatingOverviewItem{
			RatingResponse: dto.RatingResponse{
				ID:          row.ID,
				RaterID:     row.RaterID,
				RatedEntity: row.RatedEntity,
				EntityID:    row.EntityID,
				Value:       row.Value,
				Comment:     row.Comment,
				SubmittedAt: row.SubmittedAt,
			},
			RaterName:    row.RaterName,
			ClassName:    row.ClassName,
			LecturerName: row.LecturerName,
			Average:      aggregate.Average,
			Count:        aggregate.Count,
		})
	}

	return dto.RatingOverviewResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

// Monitoring lists the audit trail. A lecturer sees only their own events, a PRL
// sees PRL activity only, and a PL sees everything.
func (s *dashboardService) Monitoring(ctx context.Context, actor Actor, req dto.AuditListRequest) (dto.AuditListResponse, error) {
	switch actor.Role {
	case models.RoleLecturer:
		if actor.ID == 0 {
			return dto.AuditListResponse{}, forbiddenError("lecturer identity required")
		}
		req.ActorID = actor.ID
		req.Role = string(models.RoleLecturer)
	case models.RolePRL:
		req.Role = string(models.RolePRL)
	case models.RolePL:
	default:
		return dto.AuditListResponse{}, forbiddenError("role %q cannot view monitoring", actor.Role)
	}

	response, err := s.audit.List(ctx, req)
	if err != nil {
		return dto.AuditListResponse{}, err
	}

	actorIDs := make([]uint, 0, len(response.Items))
	seen := make(map[uint]struct{}, len(response.Items))
	for _, item := range response.Items {
		if _, ok := seen[item.ActorID]; ok {
			continue
		}
		seen[item.ActorID] = struct{}{}
		actorIDs = append(actorIDs, item.ActorID)
	}

	users, err := s.directory.UsersByID(ctx, actorIDs)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to resolve audit actor names")
		return response, nil
	}
	for i := range response.Items {
		response.Items[i].ActorName = users[response.Items[i].ActorID].Name
	}

	return response, nil
}
