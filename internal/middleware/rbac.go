package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/luct-report-api/internal/models"
	"github.com/noah-isme/luct-report-api/internal/utils"
)

// RequireRole ensures that the authenticated user holds one of the allowed roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		raw, _ := c.Locals(LocalUserRole).(string)
		role, ok := models.ParseRole(raw)
		if !ok {
			return utils.SendErrorKind(c, fiber.StatusForbidden, "forbidden", "unknown role")
		}
		if _, ok := allowed[role]; !ok {
			return utils.SendErrorKind(c, fiber.StatusForbidden, "forbidden", "insufficient permissions")
		}
		return c.Next()
	}
}
