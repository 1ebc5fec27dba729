package dto

import (
	"time"

	"github.com/noah-isme/luct-report-api/internal/models"
)

// AuditListRequest defines filters for the monitoring log.
type AuditListRequest struct {
	Page     int
	PageSize int
	Role     string `validate:"omitempty,oneof=student lecturer prl pl"`
	Action   string `validate:"max=64"`
	ActorID  uint
}

// AuditEventResponse serializes one audit event.
type AuditEventResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorName  string                 `json:"actor_name,omitempty"`
	ActorRole  models.Role            `json:"actor_role"`
	Action     string                 `json:"action"`
	Target     string                 `json:"target"`
	EntityType string                 `json:"entity_type,omitempty"`
	EntityID   *uint                  `json:"entity_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// AuditListResponse wraps a paginated audit response.
type AuditListResponse struct {
	Items      []AuditEventResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewAuditEventResponse converts an audit model into a DTO.
func NewAuditEventResponse(event models.AuditEvent) AuditEventResponse {
	return AuditEventResponse{
		ID:         event.ID,
		ActorID:    event.ActorID,
		ActorRole:  event.ActorRole,
		Action:     event.Action,
		Target:     event.Target,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Metadata:   map[string]interface{}(event.Metadata),
		Timestamp:  event.CreatedAt,
	}
}
