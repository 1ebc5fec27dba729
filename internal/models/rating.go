package models

import "time"

// RatedEntity is the closed set of things a rating can target.
type RatedEntity string

const (
	// RatedEntityLecture targets a delivered lecture, identified by its report id.
	RatedEntityLecture RatedEntity = "lecture"
	// RatedEntityClass targets a scheduled class.
	RatedEntityClass RatedEntity = "class"
)

const (
	MinRatingValue = 1
	MaxRatingValue = 5
)

// Valid reports whether e is a known entity kind.
func (e RatedEntity) Valid() bool {
	return e == RatedEntityLecture || e == RatedEntityClass
}

// Rating is one rater's score for one entity. At most one row exists per
// (rater_id, rated_entity, entity_id).
type Rating struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	RaterID     uint        `gorm:"not null;uniqueIndex:idx_rating_rater_entity" json:"rater_id"`
	RatedEntity RatedEntity `gorm:"size:16;not null;uniqueIndex:idx_rating_rater_entity;index:idx_rating_partition" json:"rated_entity"`
	EntityID    uint        `gorm:"not null;uniqueIndex:idx_rating_rater_entity;index:idx_rating_partition" json:"entity_id"`
	Value       int         `gorm:"not null;check:value >= 1 AND value <= 5" json:"value"`
	Comment     string      `gorm:"type:text" json:"comment"`
	SubmittedAt time.Time   `gorm:"not null" json:"submitted_at"`
	CreatedAt   time.Time   `json:"created_at"`
}

// AggregateRating is the live average and count for one (rated_entity, entity_id) partition.
type AggregateRating struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}
