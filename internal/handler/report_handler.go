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

// ReportHandler exposes the lecture report workflow.
type ReportHandler struct {
	reports   service.ReportService
	dashboard service.DashboardService
	logger    zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(reports service.ReportService, dashboard service.DashboardService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reports:   reports,
		dashboard: dashboard,
		logger:    logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches report endpoints to an authenticated router group.
func (h *ReportHandler) Register(router fiber.Router) {
	readers := middleware.RequireRole(models.RoleLecturer, models.RolePRL, models.RolePL)

	router.Post("/", middleware.RequireRole(models.RoleLecturer), h.submit)
	router.Get("/", readers, h.list)
	router.Get("/:id/average", h.average)
	router.Post("/:id/feedback", middleware.RequireRole(models.RolePRL, models.RolePL), h.attachFeedback)
	router.Get("/:id", readers, h.get)
}

func (h *ReportHandler) submit(c *fiber.Ctx) error {
	var payload dto.ReportSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid payload")
	}

	report, err := h.reports.Submit(withRequestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to submit report")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "report submitted", report)
}

func (h *ReportHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	reports, err := h.reports.ListFor(withRequestContext(c), actorFromContext(c), dto.ReportListRequest{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list reports")
	}

	return utils.SendSuccess(c, "reports retrieved", reports)
}

func (h *ReportHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	report, err := h.reports.Get(withRequestContext(c), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load report")
	}

	return utils.SendSuccess(c, "report retrieved", report)
}

func (h *ReportHandler) attachFeedback(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var payload dto.FeedbackRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid payload")
	}

	report, err := h.reports.AttachFeedback(withRequestContext(c), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to attach feedback")
	}

	return utils.SendSuccess(c, "feedback submitted", report)
}

func (h *ReportHandler) average(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	aggregate, err := h.dashboard.ReportAverage(withRequestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to compute lecture rating")
	}

	return utils.SendSuccess(c, "lecture rating retrieved", aggregate)
}
