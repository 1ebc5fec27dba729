package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/luct-report-api/internal/dto"
	"github.com/noah-isme/luct-report-api/internal/middleware"
	"github.com/noah-isme/luct-report-api/internal/models"
	"github.com/noah-isme/luct-report-api/internal/service"
	"github.com/noah-isme/luct-report-api/internal/utils"
)

// RatingHandler exposes rating submission and aggregates.
type RatingHandler struct {
	ratings   service.RatingService
	dashboard service.DashboardService
	logger    zerolog.Logger
}

// NewRatingHandler constructs the handler.
func NewRatingHandler(ratings service.RatingService, dashboard service.DashboardService, logger zerolog.Logger) *RatingHandler {
	return &RatingHandler{
		ratings:   ratings,
		dashboard: dashboard,
		logger:    logger.With().Str("component", "rating_handler").Logger(),
	}
}

// RegisterPublic attaches the unauthenticated aggregate endpoint.
func (h *RatingHandler) RegisterPublic(router fiber.Router) {
	router.Get("/:entity/:id/average", h.aggregate)
}

// Register attaches authenticated rating endpoints. submitGuards run before a
// submission, typically a rate limiter.
func (h *RatingHandler) Register(router fiber.Router, submitGuards ...fiber.Handler) {
	submit := append(append([]fiber.Handler{}, submitGuards...), h.submit)
	router.Post("/", submit...)
	router.Get("/mine", h.mine)
	router.Get("/owned", middleware.RequireRole(models.RoleLecturer), h.owned)
	router.Get("/overview", middleware.RequireRole(models.RolePRL, models.RolePL), h.overview)
}

func (h *RatingHandler) submit(c *fiber.Ctx) error {
	var payload dto.RatingSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid payload")
	}

	result, err := h.ratings.Submit(withRequestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to save rating")
	}

	status := fiber.StatusOK
	if result.Created {
		status = fiber.StatusCreated
	}
	return utils.SendSuccessWithStatus(c, status, "rating saved", result)
}

func (h *RatingHandler) aggregate(c *fiber.Ctx) error {
	entity, err := service.ParseRatedEntity(c.Params("entity"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to compute rating")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	aggregate, err := h.ratings.Aggregate(withRequestContext(c), entity, id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to compute rating")
	}

	return utils.SendSuccess(c, "rating retrieved", aggregate)
}

func (h *RatingHandler) mine(c *fiber.Ctx) error {
	ratings, err := h.ratings.ListForRater(withRequestContext(c), userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list ratings")
	}
	return utils.SendSuccess(c, "ratings retrieved", ratings)
}

func (h *RatingHandler) owned(c *fiber.Ctx) error {
	ratings, err := h.ratings.ListForEntityOwner(withRequestContext(c), userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list ratings")
	}
	return utils.SendSuccess(c, "ratings retrieved", ratings)
}

func (h *RatingHandler) overview(c *fiber.Ctx) error {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	entityID, err := parseQueryInt(c, "entity_id")
	if err != nil || entityID < 0 {
		return badRequest(c, "invalid entity_id")
	}

	overview, err := h.dashboard.RatingsOverview(withRequestContext(c), dto.RatingOverviewRequest{
		Page:        page,
		PageSize:    pageSize,
		RatedEntity: c.Query("entity"),
		EntityID:    uint(entityID),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to load ratings overview")
	}

	return utils.SendSuccess(c, "ratings retrieved", overview)
}
