// Package handler serves the approvals form, its JSON API and the health probes.
package handler

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"productapprovals/internal/database"
	"productapprovals/internal/service"
	"productapprovals/internal/session"
)

// Handler holds the dependencies of every route.
type Handler struct {
	gate      *session.Gate
	validator *service.Validator
	// runs and db are nil when the run ledger is not configured.
	runs service.RunService
	db   *sql.DB
	log  *slog.Logger
}

// New returns a Handler. runs and db may be nil.
func New(gate *session.Gate, validator *service.Validator, runs service.RunService, db *sql.DB, log *slog.Logger) *Handler {
	return &Handler{gate: gate, validator: validator, runs: runs, db: db, log: log}
}

// RegisterRoutes attaches every route to app.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.health)
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Get("/", h.index)
	app.Post("/login", h.login)
	app.Post("/logout", h.logout)
	app.Post("/validate", h.gate.Require(), h.validatePage)

	api := app.Group("/api/v1", h.gate.Require())
	api.Post("/validations", h.createValidation)
	if h.runs != nil {
		api.Get("/runs", h.listRuns)
		api.Get("/runs/:id", h.getRun)
		api.Get("/runs/:id/documents/:kind", h.getRunDocument)
	}
}

// health checks the ledger database when one is configured.
//
//	@Summary	Readiness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	errorPayload
//	@Router		/health [get]
func (h *Handler) health(c *fiber.Ctx) error {
	if h.db != nil {
		if err := database.Ping(c.UserContext(), h.db); err != nil {
			requestLogger(h.log, c).Warn("health check failed", "error", err)
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
}
