package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tournament-score-system/models"
	"tournament-score-system/utils"
)

// UserContextMiddleware extracts the identity the Gateway resolved against
// the auth provider. Routes mounted behind it always have a caller; a
// request arriving without X-User-ID is rejected before any handler runs.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			log.Printf("🚫 [USER_CTX] X-User-ID missing on secured route: %s", c.Path())
			return utils.Fail(c, fiber.StatusUnauthorized, models.CodeAuthRequired,
				"authentication required")
		}

		var roles []string
		if rolesStr := c.Get("X-User-Roles"); rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				if r = strings.TrimSpace(r); r != "" {
					roles = append(roles, r)
				}
			}
		}

		c.Locals("user_id", userID)
		c.Locals("user_roles", roles)

		return c.Next()
	}
}

// CallerID returns the authenticated user id set by UserContextMiddleware,
// or "" when the request is unauthenticated.
func CallerID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
