package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditEvent is an append-only record of who did what to which target.
type AuditEvent struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null;index" json:"actor_id"`
	ActorRole  Role              `gorm:"size:32;not null;index" json:"actor_role"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	Target     string            `gorm:"size:512;not null" json:"target"`
	EntityType string            `gorm:"size:64" json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `gorm:"not null;index" json:"created_at"`
}

// Audit actions emitted by the reporting and rating workflows.
const (
	AuditActionSubmittedReport = "submitted report"
	AuditActionGaveFeedback    = "gave feedback"
	AuditActionSubmittedRating = "submitted rating"
	AuditActionUpdatedRating   = "updated rating"
)
