package service

import (
	"context"
	"encoding/json"
	"iter"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/luct-report-api/internal/dto"
	"github.com/noah-isme/luct-report-api/internal/models"
	"github.com/noah-isme/luct-report-api/internal/observability"
	"github.com/noah-isme/luct-report-api/internal/repository"
)

const (
	defaultAuditBatchSize = 100
	auditStreamMaxLen     = 10000
	maxAuditTargetLength  = 512
)

// AuditEntry captures the details required to persist an audit event.
type AuditEntry struct {
	ActorID    uint
	ActorRole  models.Role
	Action     string
	Target     string
	EntityType string
	EntityID   *uint
	Metadata   map[string]interface{}
}

// AuditRecorder appends audit events.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) (models.AuditEvent, error)
}

// AuditQuery selects a finite, newest-first slice of the audit trail.
type AuditQuery struct {
	Filter    repository.AuditFilter
	Limit     int
	BatchSize int
}

// AuditService records and reads the audit trail.
type AuditService interface {
	AuditRecorder
	List(ctx context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error)
	Query(ctx context.Context, query AuditQuery) iter.Seq2[models.AuditEvent, error]
}

// AuditFanout configures the optional brokers that receive a copy of every event.
type AuditFanout struct {
	Redis   *redis.Client
	NATS    *nats.Conn
	Channel string
}

type auditEnvelope struct {
	Source string            `json:"source"`
	Event  models.AuditEvent `json:"event"`
	SentAt time.Time         `json:"sent_at"`
}

type auditService struct {
	repo        repository.AuditRepository
	validator   *validator.Validate
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	sanitizer   *bluemonday.Policy
	batchSize   int
	logger      zerolog.Logger
	now         func() time.Time
	nodeID      string
}

// NewAuditService constructs the audit logger.
func NewAuditService(repo repository.AuditRepository, validate *validator.Validate, fanout AuditFanout, batchSize int, logger zerolog.Logger) AuditService {
	if batchSize <= 0 {
		batchSize = defaultAuditBatchSize
	}

	stream := ""
	subject := ""
	if channel := strings.TrimSpace(fanout.Channel); channel != "" {
		stream = channel + ":audit"
		subject = strings.ReplaceAll(channel, ":", ".") + ".audit"
	}

	return &auditService{
		repo:        repo,
		validator:   validate,
		redis:       fanout.Redis,
		redisStream: stream,
		nats:        fanout.NATS,
		natsSubject: subject,
		sanitizer:   bluemonday.StrictPolicy(),
		batchSize:   batchSize,
		logger:      logger.With().Str("component", "audit_service").Logger(),
		now:         time.Now,
		nodeID:      uuid.NewString(),
	}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) (models.AuditEvent, error) {
	action := strings.ToLower(strings.TrimSpace(entry.Action))
	if action == "" {
		return models.AuditEvent{}, validationError("audit action is required")
	}

	target := plainText(s.sanitizer, entry.Target)
	if runes := []rune(target); len(runes) > maxAuditTargetLength {
		target = string(runes[:maxAuditTargetLength])
	}

	event := models.AuditEvent{
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     action,
		Target:     target,
		EntityType: strings.ToLower(strings.TrimSpace(entry.EntityType)),
		EntityID:   entry.EntityID,
		Metadata:   datatypes.JSONMap(entry.Metadata),
		CreatedAt:  s.now().UTC(),
	}
	if event.Metadata == nil {
		event.Metadata = datatypes.JSONMap{}
	}

	if err := s.repo.Create(ctx, &event); err != nil {
		return models.AuditEvent{}, storageError(err)
	}

	s.publish(ctx, event)

	return event, nil
}

func (s *auditService) List(ctx context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return dto.AuditListResponse{}, err
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}

	filter := repository.AuditFilter{
		Role:           models.Role(strings.ToLower(strings.TrimSpace(req.Role))),
		ActionContains: req.Action,
	}
	if req.ActorID > 0 {
		actorID := req.ActorID
		filter.ActorID = &actorID
	}

	events, total, err := s.repo.List(ctx, filter, page, req.PageSize)
	if err != nil {
		return dto.AuditListResponse{}, storageError(err)
	}

	items := make([]dto.AuditEventResponse, 0, len(events))
	for _, event := range events {
		items = append(items, dto.NewAuditEventResponse(event))
	}

	return dto.AuditListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(page, req.PageSize, total),
	}, nil
}

// Query returns a lazy sequence over the matching events, newest first. Pages are
// fetched by keyset as the caller ranges; ranging again restarts from the newest
// event. A storage failure is yielded once and ends the sequence.
func (s *auditService) Query(ctx context.Context, query AuditQuery) iter.Seq2[models.AuditEvent, error] {
	batch := query.BatchSize
	if batch <= 0 {
		batch = s.batchSize
	}

	return func(yield func(models.AuditEvent, error) bool) {
		var cursor *repository.AuditCursor
		emitted := 0

		for {
			size := batch
			if query.Limit > 0 && query.Limit-emitted < size {
				size = query.Limit - emitted
			}
			if size <= 0 {
				return
			}

			events, err := s.repo.ListAfter(ctx, query.Filter, cursor, size)
			if err != nil {
				yield(models.AuditEvent{}, storageError(err))
				return
			}

			for _, event := range events {
				if !yield(event, nil) {
					return
				}
				emitted++
			}

			if len(events) < size {
				return
			}

			last := events[len(events)-1]
			cursor = &repository.AuditCursor{CreatedAt: last.CreatedAt, ID: last.ID}
		}
	}
}

func (s *auditService) publish(ctx context.Context, event models.AuditEvent) {
	if s.redis == nil && s.nats == nil {
		return
	}

	payload, err := json.Marshal(auditEnvelope{Source: s.nodeID, Event: event, SentAt: s.now().UTC()})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode audit event")
		return
	}

	if s.redis != nil && s.redisStream != "" {
		err := s.redis.XAdd(ctx, &redis.XAddArgs{
			Stream: s.redisStream,
			MaxLen: auditStreamMaxLen,
			Approx: true,
			Values: map[string]interface{}{"payload": payload},
		}).Err()
		if err != nil {
			observability.AuditPublishFailures().WithLabelValues("redis").Inc()
			s.logger.Warn().Err(err).Uint("audit_id", event.ID).Msg("failed to publish audit event to redis")
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			observability.AuditPublishFailures().WithLabelValues("nats").Inc()
			s.logger.Warn().Err(err).Uint("audit_id", event.ID).Msg("failed to publish audit event to nats")
		}
	}
}

// recordAudit writes an audit event on behalf of a business operation. A failed
// write is logged and counted but never fails the operation.
func recordAudit(ctx context.Context, recorder AuditRecorder, logger zerolog.Logger, entry AuditEntry) {
	if recorder == nil {
		return
	}

	if _, err := recorder.Record(ctx, entry); err != nil {
		observability.AuditWriteFailures().Inc()
		logger.Warn().
			Err(err).
			Str("action", entry.Action).
			Uint("actor_id", entry.ActorID).
			Str("target", entry.Target).
			Msg("audit event dropped")
	}
}
