package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/luct-report-api/internal/models"
)

// ReportFilter narrows report list queries.
type ReportFilter struct {
	Page       int
	PageSize   int
	LecturerID *uint
	ClassID    *uint
	Status     models.ReportStatus
}

// ReportRepository persists lecture reports and their feedback slots.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (models.Report, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error)
	ListIDsByLecturer(ctx context.Context, lecturerID uint) ([]uint, error)
	InsertFeedback(ctx context.Context, slot *models.ReportFeedback) (bool, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository constructs the report repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Omit("Class", "Feedback").Create(report).Error
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (models.Report, error) {
	var report models.Report
	if err := r.preloaded(ctx).First(&report, id).Error; err != nil {
		return models.Report{}, err
	}
	return report, nil
}

func (r *reportRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Report{})

	if filter.LecturerID != nil {
		query = query.Where("reports.lecturer_id = ?", *filter.LecturerID)
	}

	if filter.ClassID != nil {
		query = query.Where("reports.class_id = ?", *filter.ClassID)
	}

	query = applyStatusFilter(query, filter.Status)

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var reports []models.Report
	err := query.
		Preload("Feedback").
		Preload("Class.Course").
		Order("reports.created_at DESC, reports.id DESC").
		Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

func (r *reportRepository) ListIDsByLecturer(ctx context.Context, lecturerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("lecturer_id = ?", lecturerID).
		Order("created_at DESC, id DESC").
		Pluck("id", &ids).Error
	return ids, err
}

// InsertFeedback writes the slot only if the (report_id, role) pair is still free.
// It returns false without error when another writer already filled it.
func (r *reportRepository) InsertFeedback(ctx context.Context, slot *models.ReportFeedback) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "report_id"}, {Name: "role"}},
		DoNothing: true,
	}).Create(slot)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *reportRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Feedback", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC")
		}).
		Preload("Class.Course")
}

const feedbackSlotExists = "EXISTS (SELECT 1 FROM report_feedback f WHERE f.report_id = reports.id AND f.role = ?)"

func applyStatusFilter(query *gorm.DB, status models.ReportStatus) *gorm.DB {
	switch status {
	case models.ReportStatusSubmitted:
		return query.Where("NOT EXISTS (SELECT 1 FROM report_feedback f WHERE f.report_id = reports.id)")
	case models.ReportStatusPRLReviewed:
		return query.Where(feedbackSlotExists, models.RolePRL).Where("NOT "+feedbackSlotExists, models.RolePL)
	case models.ReportStatusPLReviewed:
		return query.Where(feedbackSlotExists, models.RolePL)
	default:
		return query
	}
}
