package router

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/tinegaCollins/user-manager/internal/auth"
	"github.com/tinegaCollins/user-manager/internal/config"
)

// CorsMiddleware builds the cross-origin policy for cfg. It returns nil when
// cross-origin access is switched off entirely.
//
// Development allows the local dev servers with credentials. Production uses
// ALLOWED_ORIGINS; with an empty list it either opens to every origin
// without credentials or installs nothing, per CORS_OPEN_FALLBACK.
func CorsMiddleware(cfg config.Config) fiber.Handler {
	c := cors.Config{
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Content-Type, Authorization, " + auth.HeaderAdminKey,
		ExposeHeaders: fiber.HeaderXRequestID + ", " + fiber.HeaderContentDisposition,
	}

	switch {
	case cfg.IsDev():
		c.AllowOrigins = strings.Join(config.DevOrigins, ",")
		c.AllowCredentials = true
	case len(cfg.AllowedOrigins) > 0:
		c.AllowOrigins = strings.Join(cfg.AllowedOrigins, ",")
		c.AllowCredentials = true
	case cfg.CORSOpenFallback:
		c.AllowOrigins = "*"
	default:
		return nil
	}
	return cors.New(c)
}
