package admin

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tinegaCollins/user-manager/internal/apperr"
	"github.com/tinegaCollins/user-manager/internal/auth"
)

// RequireAdminAPIKey admits only requests presenting the configured key.
// A blank key refuses everything.
func RequireAdminAPIKey(key string) fiber.Handler {
	key = strings.TrimSpace(key)
	if key == "" {
		return func(c *fiber.Ctx) error {
			return apperr.Forbidden("admin access not configured")
		}
	}

	return func(c *fiber.Ctx) error {
		got := strings.TrimSpace(c.Get(auth.HeaderAdminKey))
		if got == "" || !auth.KeyEqual(got, key) {
			return apperr.Unauthorized("invalid admin key")
		}
		return c.Next()
	}
}
