package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/luct-report-api/internal/models"
)

// AuditFilter narrows audit trail queries.
type AuditFilter struct {
	Role           models.Role
	ActionContains string
	ActorID        *uint
	Since          *time.Time
	Until          *time.Time
}

// AuditCursor marks the last event of a keyset page; the next page starts strictly after it.
type AuditCursor struct {
	CreatedAt time.Time
	ID        uint
}

// AuditRepository appends and reads audit events. Events are never updated or deleted.
type AuditRepository interface {
	Create(ctx context.Context, event *models.AuditEvent) error
	List(ctx context.Context, filter AuditFilter, page, pageSize int) ([]models.AuditEvent, int64, error)
	ListAfter(ctx context.Context, filter AuditFilter, cursor *AuditCursor, limit int) ([]models.AuditEvent, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository constructs the audit repository.
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, event *models.AuditEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter, page, pageSize int) ([]models.AuditEvent, int64, error) {
	query := r.filtered(ctx, filter)

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pageSize > 0 {
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	var events []models.AuditEvent
	if err := query.Order("created_at DESC, id DESC").Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// ListAfter returns up to limit events older than cursor, newest first.
func (r *auditRepository) ListAfter(ctx context.Context, filter AuditFilter, cursor *AuditCursor, limit int) ([]models.AuditEvent, error) {
	query := r.filtered(ctx, filter)
	if cursor != nil {
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var events []models.AuditEvent
	err := query.Order("created_at DESC, id DESC").Find(&events).Error
	return events, err
}

func (r *auditRepository) filtered(ctx context.Context, filter AuditFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.AuditEvent{})

	if filter.Role != "" {
		query = query.Where("actor_role = ?", filter.Role)
	}

	if action := strings.ToLower(strings.TrimSpace(filter.ActionContains)); action != "" {
		query = query.Where(`LOWER(action) LIKE ? ESCAPE '\'`, "%"+escapeLike(action)+"%")
	}

	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}

	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}

	if filter.Until != nil {
		query = query.Where("created_at <= ?", *filter.Until)
	}

	return query
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
