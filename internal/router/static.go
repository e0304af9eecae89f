package router

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// registerClient serves the built front-end from dist and falls back to its
// index.html for client-side routes. Unknown /api paths stay 404.
func registerClient(app *fiber.App, dist string) {
	app.Static("/", dist, fiber.Static{Index: "index.html"})

	index := filepath.Join(dist, "index.html")
	app.Get("/*", func(c *fiber.Ctx) error {
		if isAPIPath(c.Path()) {
			return fiber.ErrNotFound
		}
		if _, err := os.Stat(index); err != nil {
			return fiber.ErrNotFound
		}
		return c.SendFile(index)
	})
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
