package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/authshell/authshell/internal/config"
	"github.com/authshell/authshell/internal/middleware"
	"github.com/authshell/authshell/internal/shell"
)

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	Shell  *shell.Shell
	Store  Pinger
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	var submitGuard fiber.Handler
	if d.Cache != nil {
		submitGuard = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	signInLimit, stopSignInLimit := middleware.SignInRateLimit(d.Cache, d.Cfg.SignInPerMinute)
	app.Hooks().OnShutdown(stopSignInLimit)
	RegisterShellRoutes(api, shell.NewHandler(d.Shell), ShellGuards{
		Submit:      submitGuard,
		SignInLimit: signInLimit,
	})

	return nil
}
