package main

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"productapprovals/docs"
	"productapprovals/internal/approvals"
	"productapprovals/internal/config"
	"productapprovals/internal/database"
	"productapprovals/internal/database/migration"
	handlers "productapprovals/internal/http/handler"
	"productapprovals/internal/http/middleware"
	"productapprovals/internal/logging"
	"productapprovals/internal/metrics"
	"productapprovals/internal/otel"
	"productapprovals/internal/pipeline"
	"productapprovals/internal/repository/postgres"
	"productapprovals/internal/service"
	"productapprovals/internal/session"
	"productapprovals/internal/storage"
)

// Uploads carry a CSV and a PDF; fiber's 4MB default is too small for scanned licenses.
const bodyLimit = 32 << 20

// @title Product Approvals API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(cfg.Log)
	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// The run ledger is optional: without DB_HOST the form still works.
	var db *sql.DB
	var runs service.RunService
	if cfg.Database.Enabled() {
		db, err = database.Open(ctx, cfg.Database)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			log.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}

		var objStore storage.Storage
		if cfg.MinIO.Enabled() {
			objStore, err = storage.NewMinIO(ctx, cfg.MinIO)
			if err != nil {
				log.Error("failed to initialize object storage", "error", err)
				os.Exit(1)
			}
		}
		runs = service.NewRunService(objStore, postgres.NewRunPostgres(db))
	} else {
		log.Info("run ledger disabled", "reason", "DB_HOST not set")
	}

	steps, err := metrics.NewSteps(prometheus.DefaultRegisterer)
	if err != nil {
		log.Error("failed to register step metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Error("failed to register http metrics", "error", err)
		os.Exit(1)
	}

	client := approvals.New(cfg.Approvals, approvals.WithLogger(log))
	opts := []service.ValidatorOption{service.WithMetrics(steps)}
	if runs != nil {
		opts = append(opts, service.WithRunLedger(runs))
	}
	validator := service.NewValidator(pipeline.New(client), logging.Named(log, "validation"), opts...)
	gate := session.New(cfg.Session, logging.Named(log, "session"))

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    bodyLimit,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.New(gate, validator, runs, db, log).RegisterRoutes(app)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	log.Info("starting server", "addr", addr, "approvals_host", cfg.Approvals.Host, "ledger_enabled", validator.LedgerEnabled())

	if err := app.Listen(addr); err != nil {
		log.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
