package dto

import (
	"time"

	"github.com/noah-isme/luct-report-api/internal/models"
)

// RatingSubmitRequest captures a rating for a lecture or class.
type RatingSubmitRequest struct {
	RatedEntity string `json:"rated_entity"`
	EntityID    uint   `json:"entity_id" validate:"required"`
	Value       int    `json:"value"`
	Comment     string `json:"comment" validate:"max=2000"`
}

// RatingResponse serializes a persisted rating.
type RatingResponse struct {
	ID          uint               `json:"id"`
	RaterID     uint               `json:"rater_id"`
	RatedEntity models.RatedEntity `json:"rated_entity"`
	EntityID    uint               `json:"entity_id"`
	Value       int                `json:"value"`
	Comment     string             `json:"comment"`
	SubmittedAt time.Time          `json:"submitted_at"`
}

// RatingSubmitResponse reports whether the submission created or updated the rater's rating.
type RatingSubmitResponse struct {
	Created bool           `json:"created"`
	Rating  RatingResponse `json:"rating"`
}

// AggregateResponse is the live average and count for one entity.
type AggregateResponse struct {
	RatedEntity models.RatedEntity `json:"rated_entity"`
	EntityID    uint               `json:"entity_id"`
	Average     float64            `json:"average"`
	Count       int64              `json:"count"`
}

// NewRatingResponse converts a rating model into a DTO.
func NewRatingResponse(rating models.Rating) RatingResponse {
	return RatingResponse{
		ID:          rating.ID,
		RaterID:     rating.RaterID,
		RatedEntity: rating.RatedEntity,
		EntityID:    rating.EntityID,
		Value:       rating.Value,
		Comment:     rating.Comment,
		SubmittedAt: rating.SubmittedAt,
	}
}

// NewRatingResponseSlice converts a slice of rating models.
func NewRatingResponseSlice(ratings []models.Rating) []RatingResponse {
	responses := make([]RatingResponse, 0, len(ratings))
	for _, rating := range ratings {
		responses = append(responses, NewRatingResponse(rating))
	}
	return responses
}

// NewAggregateResponse wraps an aggregate with the entity it describes.
func NewAggregateResponse(entity models.RatedEntity, entityID uint, aggregate models.AggregateRating) AggregateResponse {
	return AggregateResponse{
		RatedEntity: entity,
		EntityID:    entityID,
		Average:     aggregate.Average,
		Count:       aggregate.Count,
	}
}
