package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/tinegaCollins/user-manager/internal/admin"
	"github.com/tinegaCollins/user-manager/internal/audit"
	"github.com/tinegaCollins/user-manager/internal/auth"
	"github.com/tinegaCollins/user-manager/internal/config"
	"github.com/tinegaCollins/user-manager/internal/events"
	"github.com/tinegaCollins/user-manager/internal/metrics"
	"github.com/tinegaCollins/user-manager/internal/reports"
	"github.com/tinegaCollins/user-manager/internal/users"
)

// Deps are the collaborators New wires into the app. Store is required;
// the rest fall back to no-op implementations.
type Deps struct {
	Config  config.Config
	Logger  *zap.Logger
	Store   users.Store
	Events  events.Publisher
	Audit   audit.Writer
	Metrics *metrics.Metrics
	// LimiterStorage shares rate limit counters between replicas.
	LimiterStorage fiber.Storage
}

// New builds the complete HTTP application.
func New(d Deps) *fiber.App {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := d.Metrics
	if m == nil {
		m = metrics.New()
	}
	pub := d.Events
	if pub == nil {
		pub = events.Nop{}
	}
	cfg := d.Config

	app := fiber.New(fiber.Config{
		AppName:               "user-manager",
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(log),
	})

	// Metrics and logging wrap recover so panics are counted and logged as 500s.
	app.Use(requestid.New())
	if mw := CorsMiddleware(cfg); mw != nil {
		app.Use(mw)
	}
	app.Use(m.Middleware())
	app.Use(RequestLogger(log))
	app.Use(recover.New())

	svc := users.NewService(d.Store, m.WrapPublisher(pub), log.Named("users"))
	iss := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	r := &Router{
		UsersHandler: users.NewHandler(svc, d.Audit, log.Named("users")),
		AdminHandler: admin.NewHandler(svc, iss),
		ExportPDF:    reports.UserRosterHandler(svc),
		Metrics:      m.Handler(),
		Ping:         svc.Ping,
		AdminMW:      auth.RequireAdmin(iss, cfg.AdminAPIKey),
		AdminKeyMW:   admin.RequireAdminAPIKey(cfg.AdminAPIKey),
		WriteMW:      RateLimitWrite(cfg.WriteRateLimit, cfg.WriteRateWindow, d.LimiterStorage),
		TokenMW:      RateLimitAdminToken(d.LimiterStorage),
		IssueTokens:  iss != nil,
		ClientDist:   cfg.ClientDistPath,
	}
	r.RegisterRoutes(app)
	return app
}
