package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tournament-score-system/models"
	"tournament-score-system/utils"
)

// GatewayAuthMiddleware validates the shared-secret Bearer token the Gateway
// attaches to every request. No request reaches a handler without it.
func GatewayAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("SCORE_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Fatal("❌ SCORE_SERVICE_TOKEN is not set — service cannot authenticate Gateway")
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			log.Printf("🚫 [GATEWAY_AUTH] Missing Authorization header for %s", c.Path())
			return utils.Fail(c, fiber.StatusUnauthorized, models.CodeAuthRequired,
				"gateway authentication token missing")
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			// no "Bearer " prefix — accept the raw header value
			token = authHeader
		}

		if token != expectedToken {
			log.Printf("❌ [GATEWAY_AUTH] Invalid token for %s (got prefix: %.10s...)", c.Path(), token)
			return utils.Fail(c, fiber.StatusUnauthorized, models.CodeAuthRequired,
				"invalid gateway authentication token")
		}

		return c.Next()
	}
}
