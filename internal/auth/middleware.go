package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tinegaCollins/user-manager/internal/apperr"
	"github.com/tinegaCollins/user-manager/internal/domain"
)

const (
	HeaderAdminKey = "X-Admin-Key"

	localActor = "actor"

	// KeyActor is recorded as the actor when access came from the admin key.
	KeyActor = "admin-key"
)

// RequireAdmin admits requests carrying either a bearer token with the
// ADMIN role or the configured admin key. With neither mechanism configured
// every request is refused.
func RequireAdmin(iss *Issuer, adminKey string) fiber.Handler {
	adminKey = strings.TrimSpace(adminKey)

	return func(c *fiber.Ctx) error {
		if iss == nil && adminKey == "" {
			return apperr.Forbidden("admin access not configured")
		}

		if got := strings.TrimSpace(c.Get(HeaderAdminKey)); got != "" {
			if adminKey == "" || !KeyEqual(got, adminKey) {
				return apperr.Unauthorized("invalid admin key")
			}
			c.Locals(localActor, KeyActor)
			return c.Next()
		}

		raw := c.Get(fiber.HeaderAuthorization)
		if raw == "" {
			return apperr.Unauthorized("missing credentials")
		}
		if iss == nil || !strings.HasPrefix(raw, "Bearer ") {
			return apperr.Unauthorized("invalid token")
		}
		claims, err := iss.Parse(strings.TrimSpace(strings.TrimPrefix(raw, "Bearer ")))
		if err != nil {
			return apperr.Unauthorized("invalid token")
		}
		if claims.Role != domain.RoleAdmin {
			return apperr.Forbidden("admin role required")
		}
		c.Locals(localActor, claims.Subject)
		return c.Next()
	}
}

// Actor returns who RequireAdmin let through, or "anonymous".
func Actor(c *fiber.Ctx) string {
	if v, ok := c.Locals(localActor).(string); ok && v != "" {
		return v
	}
	return "anonymous"
}

// KeyEqual compares secrets in constant time.
func KeyEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
