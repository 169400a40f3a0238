package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/leaps-program/leaps-api/internal/config"
	"github.com/leaps-program/leaps-api/internal/handler"
	"github.com/leaps-program/leaps-api/internal/middleware"
	"github.com/leaps-program/leaps-api/internal/models"
	"github.com/leaps-program/leaps-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ActivityHandler    *handler.ActivityHandler
	SubmissionHandler  *handler.SubmissionHandler
	ReviewHandler      *handler.ReviewHandler
	WebhookHandler     *handler.WebhookHandler
	LeaderboardHandler *handler.LeaderboardHandler
	AuditHandler       *handler.AuditHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	reviewStaff := middleware.RequireRole(
		string(models.RoleReviewer), string(models.RoleAdmin), string(models.RoleSuperadmin),
	)
	admins := middleware.RequireRole(
		string(models.RoleAdmin), string(models.RoleSuperadmin),
	)

	// Stage reference data and derived totals are public reads.
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activities"))
	}
	if deps.LeaderboardHandler != nil {
		deps.LeaderboardHandler.Register(api)
	}

	// Evidence submissions require a signed-in user.
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api.Group("/submissions", jwtMiddleware))
	}

	// Reviewer decisions.
	if deps.ReviewHandler != nil {
		deps.ReviewHandler.Register(api.Group("/admin/reviews", jwtMiddleware, reviewStaff))
	}

	// LMS deliveries authenticate with the shared secret and are rate
	// limited per source address.
	if deps.WebhookHandler != nil {
		ingest := api.Group("/webhooks",
			middleware.RequireWebhookSecret(cfg.WebhookSecret),
			middleware.RateLimit("webhook", 60, time.Minute),
		)
		deps.WebhookHandler.RegisterIngest(ingest)

		admin := api.Group("/admin/webhook-events", jwtMiddleware, admins)
		deps.WebhookHandler.RegisterAdmin(admin)
	}

	if deps.AuditHandler != nil {
		deps.AuditHandler.Register(api.Group("/admin/audit", jwtMiddleware, admins))
	}
}
