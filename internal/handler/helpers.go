package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/luct-report-api/internal/middleware"
	"github.com/noah-isme/luct-report-api/internal/service"
	"github.com/noah-isme/luct-report-api/internal/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var errInvalidIdentifier = errors.New("invalid identifier")

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errInvalidIdentifier
	}
	return uint(parsed), nil
}

// pageParams reads page and page_size, clamping the page size.
func pageParams(c *fiber.Ctx) (int, int, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil || page < 0 {
		return 0, 0, errors.New("invalid page")
	}
	if page == 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil || pageSize < 0 {
		return 0, 0, errors.New("invalid page_size")
	}
	switch {
	case pageSize == 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}

	return page, pageSize, nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	id, _ := c.Locals(middleware.LocalUserID).(uint)
	return id
}

func userRoleFromContext(c *fiber.Ctx) string {
	role, _ := c.Locals(middleware.LocalUserRole).(string)
	return role
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	return service.NewActor(userIDFromContext(c), userRoleFromContext(c))
}

func withRequestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := middleware.RequestLogger(c, base)
	return &logger
}

// respondError maps a service error kind onto its HTTP status. Server-side
// failures are logged and answered with a generic message.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	kind := service.Kind(err)
	switch kind {
	case "validation":
		return utils.SendErrorKind(c, fiber.StatusBadRequest, kind, validationMessage(err))
	case "forbidden":
		return utils.SendErrorKind(c, fiber.StatusForbidden, kind, err.Error())
	case "not_found":
		return utils.SendErrorKind(c, fiber.StatusNotFound, kind, err.Error())
	case "conflict":
		return utils.SendErrorKind(c, fiber.StatusConflict, kind, err.Error())
	case "storage":
		requestLogger(logger, c).Error().Err(err).Msg(fallback)
		return utils.SendErrorKind(c, fiber.StatusServiceUnavailable, kind, fallback)
	default:
		requestLogger(logger, c).Error().Err(err).Msg(fallback)
		return utils.SendErrorKind(c, fiber.StatusInternalServerError, "internal", fallback)
	}
}

func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields = append(fields, strings.ToLower(fieldErr.Field())+" failed "+fieldErr.Tag())
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

func badRequest(c *fiber.Ctx, message string) error {
	return utils.SendErrorKind(c, fiber.StatusBadRequest, "validation", message)
}
