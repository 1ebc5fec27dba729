package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/luct-report-api/internal/dto"
	"github.com/noah-isme/luct-report-api/internal/middleware"
	"github.com/noah-isme/luct-report-api/internal/models"
	"github.com/noah-isme/luct-report-api/internal/service"
	"github.com/noah-isme/luct-report-api/internal/utils"
)

// DashboardHandler serves the lecturer dashboard and the reviewer monitoring log.
type DashboardHandler struct {
	dashboard service.DashboardService
	logger    zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches dashboard endpoints to an authenticated router group.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard/lecturer", middleware.RequireRole(models.RoleLecturer), h.lecturer)
	router.Get("/monitoring", middleware.RequireRole(models.RoleLecturer, models.RolePRL, models.RolePL), h.monitoring)
}

func (h *DashboardHandler) lecturer(c *fiber.Ctx) error {
	overview, err := h.dashboard.LecturerOverview(withRequestContext(c), userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load dashboard")
	}
	return utils.SendSuccess(c, "dashboard retrieved", overview)
}

func (h *DashboardHandler) monitoring(c *fiber.Ctx) error {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	req := dto.AuditListRequest{
		Page:     page,
		PageSize: pageSize,
		Role:     strings.ToLower(strings.TrimSpace(c.Query("role"))),
		Action:   strings.TrimSpace(c.Query("action")),
	}
	if raw := strings.TrimSpace(c.Query("actor_id")); raw != "" {
		actorID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, "invalid actor_id")
		}
		req.ActorID = uint(actorID)
	}

	events, err := h.dashboard.Monitoring(withRequestContext(c), actorFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load monitoring log")
	}

	return utils.SendSuccess(c, "activity retrieved", events)
}
