package router

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/tinegaCollins/user-manager/internal/admin"
	"github.com/tinegaCollins/user-manager/internal/docs"
	"github.com/tinegaCollins/user-manager/internal/users"
)

type Router struct {
	UsersHandler *users.Handler
	AdminHandler *admin.Handler
	ExportPDF    fiber.Handler
	Metrics      fiber.Handler
	Ping         func(context.Context) error

	AdminMW    fiber.Handler
	AdminKeyMW fiber.Handler
	WriteMW    fiber.Handler
	TokenMW    fiber.Handler

	// IssueTokens registers POST /api/admin/token.
	IssueTokens bool
	ClientDist  string
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/", banner)
	api.Get("/health", health)
	if r.Ping != nil {
		api.Get("/ready", ready(r.Ping))
	}
	api.Get("/cors-test", corsTest)
	api.Get("/docs.json", docs.SpecHandler)
	api.Get("/docs.yaml", docs.YAMLHandler)
	api.Get("/docs", docs.UIHandler)
	if r.Metrics != nil {
		api.Get("/metrics", r.Metrics)
	}

	if h := r.UsersHandler; h != nil {
		u := api.Group("/users")
		u.Get("/", h.List)
		u.Post("/", r.WriteMW, h.Create)

		// Fixed paths before /:id so they are not captured as ids.
		u.Delete("/nuke", r.AdminMW, h.Nuke)
		if r.ExportPDF != nil {
			u.Get("/export.pdf", r.AdminMW, r.ExportPDF)
		}

		u.Get("/:id", h.Get)
		u.Put("/:id", r.WriteMW, h.Update)
		u.Delete("/:id", r.WriteMW, h.Delete)
	}

	if h := r.AdminHandler; h != nil {
		a := api.Group("/admin")
		a.Get("/stats", r.AdminMW, h.Stats)
		if r.IssueTokens {
			a.Post("/token", r.TokenMW, r.AdminKeyMW, h.IssueToken)
		}
	}

	// Anything else under /api is a JSON 404 for every method.
	api.Use(func(c *fiber.Ctx) error {
		if !isAPIPath(c.Path()) {
			return c.Next()
		}
		return fiber.ErrNotFound
	})

	if r.ClientDist != "" {
		registerClient(app, r.ClientDist)
	}
}
