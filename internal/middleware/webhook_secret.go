package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/leaps-program/leaps-api/internal/utils"
)

// WebhookSecretHeader carries the shared secret on inbound LMS deliveries.
const WebhookSecretHeader = "X-Webhook-Secret"

// RequireWebhookSecret authenticates automation callbacks with a shared
// secret. An empty configured secret disables the check, which is only
// acceptable in local development.
func RequireWebhookSecret(secret string) fiber.Handler {
	expected := []byte(strings.TrimSpace(secret))

	return func(c *fiber.Ctx) error {
		if len(expected) == 0 {
			return c.Next()
		}

		presented := []byte(strings.TrimSpace(c.Get(WebhookSecretHeader)))
		if subtle.ConstantTimeCompare(expected, presented) != 1 {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid webhook secret")
		}

		return c.Next()
	}
}
