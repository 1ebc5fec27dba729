package service

import (
	"context"
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

	"github.com/noah-isme/luct-report-api/internal/dto"
	"github.com/noah-isme/luct-report-api/internal/models"
	"github.com/noah-isme/luct-report-api/internal/observability"
	"github.com/noah-isme/luct-report-api/internal/repository"
)

// RatingService records one rating per rater and entity and serves live aggregates.
type RatingService interface {
	Submit(ctx context.Context, actor Actor, payload dto.RatingSubmitRequest) (dto.RatingSubmitResponse, error)
	Aggregate(ctx context.Context, entity models.RatedEntity, entityID uint) (dto.AggregateResponse, error)
	ListForRater(ctx context.Context, raterID uint) ([]dto.RatingResponse, error)
	ListForEntityOwner(ctx context.Context, ownerID uint) ([]dto.RatingResponse, error)
}

type ratingService struct {
	ratings   repository.RatingRepository
	validator *validator.Validate
	audit     AuditRecorder
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewRatingService constructs the rating store.
func NewRatingService(ratings repository.RatingRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) RatingService {
	return &ratingService{
		ratings:   ratings,
		validator: validate,
		audit:     audit,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "rating_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/luct-report-api/internal/service/rating"),
		now:       time.Now,
	}
}

// ParseRatedEntity normalises a raw entity kind.
func ParseRatedEntity(raw string) (models.RatedEntity, error) {
	entity := models.RatedEntity(strings.ToLower(strings.TrimSpace(raw)))
	if !entity.Valid() {
		return "", validationError("rated_entity must be one of lecture, class")
	}
	return entity, nil
}

func (s *ratingService) Submit(ctx context.Context, actor Actor, payload dto.RatingSubmitRequest) (dto.RatingSubmitResponse, error) {
	ctx, span := s.tracer.Start(ctx, "rating.submit")
	span.SetAttributes(
		attribute.Int64("rating.rater_id", int64(actor.ID)),
		attribute.String("rating.entity", payload.RatedEntity),
		attribute.Int64("rating.entity_id", int64(payload.EntityID)),
	)
	defer span.End()

	if actor.ID == 0 || actor.Role == "" {
		span.SetStatus(codes.Error, "forbidden")
		return dto.RatingSubmitResponse{}, forbiddenError("an authenticated identity is required to rate")
	}

	if payload.Value < models.MinRatingValue || payload.Value > models.MaxRatingValue {
		observability.RatingsWritten().WithLabelValues("unknown", "rejected").Inc()
		span.SetStatus(codes.Error, "value_out_of_range")
		return dto.RatingSubmitResponse{}, validationError("value must be between %d and %d", models.MinRatingValue, models.MaxRatingValue)
	}

	entity, err := ParseRatedEntity(payload.RatedEntity)
	if err != nil {
		observability.RatingsWritten().WithLabelValues("unknown", "rejected").Inc()
		span.SetStatus(codes.Error, "unknown_entity")
		return dto.RatingSubmitResponse{}, err
	}

	payload.Comment = plainText(s.sanitizer, payload.Comment)
	if err := validateStruct(s.validator, payload); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.RatingSubmitResponse{}, err
	}

	rating := models.Rating{
		RaterID:     actor.ID,
		RatedEntity: entity,
		EntityID:    payload.EntityID,
		Value:       payload.Value,
		Comment:     payload.Comment,
		SubmittedAt: s.now().UTC(),
	}

	created, err := s.ratings.Upsert(ctx, &rating)
	if err != nil {
		observability.RatingsWritten().WithLabelValues(string(entity), "failed").Inc()
		span.RecordError(err)
		s.logger.Error().
			Err(err).
			Uint("rater_id", actor.ID).
			Str("entity", string(entity)).
			Uint("entity_id", payload.EntityID).
			Msg("failed to upsert rating")
		return dto.RatingSubmitResponse{}, storageError(err)
	}

	outcome := "updated"
	action := models.AuditActionUpdatedRating
	if created {
		outcome = "created"
		action = models.AuditActionSubmittedRating
	}
	observability.RatingsWritten().WithLabelValues(string(entity), outcome).Inc()
	span.SetAttributes(attribute.String("rating.outcome", outcome))

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		Target:     fmt.Sprintf("%s #%d rated %d", entity, rating.EntityID, rating.Value),
		EntityType: string(entity),
		EntityID:   &rating.EntityID,
		Metadata: map[string]interface{}{
			"rating_id": rating.ID,
			"value":     rating.Value,
		},
	})

	return dto.RatingSubmitResponse{
		Created: created,
		Rating:  dto.NewRatingResponse(rating),
	}, nil
}

func (s *ratingService) Aggregate(ctx context.Context, entity models.RatedEntity, entityID uint) (dto.AggregateResponse, error) {
	if !entity.Valid() {
		return dto.AggregateResponse{}, validationError("rated_entity must be one of lecture, class")
	}

	start := time.Now()
	aggregate, err := s.ratings.Aggregate(ctx, entity, entityID)
	observability.AggregateLatency().Observe(time.Since(start).Seconds())
	if err != nil {
		return dto.AggregateResponse{}, storageError(err)
	}

	return dto.NewAggregateResponse(entity, entityID, aggregate), nil
}

func (s *ratingService) ListForRater(ctx context.Context, raterID uint) ([]dto.RatingResponse, error) {
	ratings, err := s.ratings.ListByRater(ctx, raterID)
	if err != nil {
		return nil, storageError(err)
	}
	return dto.NewRatingResponseSlice(ratings), nil
}

func (s *ratingService) ListForEntityOwner(ctx context.Context, ownerID uint) ([]dto.RatingResponse, error) {
	ratings, err := s.ratings.ListForOwner(ctx, ownerID)
	if err != nil {
		return nil, storageError(err)
	}
	return dto.NewRatingResponseSlice(ratings), nil
}
