// Package migration creates the run ledger schema on start.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_validation_runs",
		SQL: `CREATE TABLE IF NOT EXISTS validation_runs (
  id               UUID        PRIMARY KEY,
  email            TEXT        NOT NULL,
  product_filename TEXT        NOT NULL,
  license_filename TEXT        NOT NULL,
  status           TEXT        NOT NULL CHECK (status IN ('succeeded', 'failed')),
  failed_step      TEXT        NOT NULL DEFAULT '',
  error_message    TEXT        NOT NULL DEFAULT '',
  product_job_id   TEXT        NOT NULL DEFAULT '',
  company_job_id   TEXT        NOT NULL DEFAULT '',
  steps            JSONB       NOT NULL DEFAULT '[]'::jsonb,
  product_key      TEXT        NOT NULL DEFAULT '',
  license_key      TEXT        NOT NULL DEFAULT '',
  started_at       TIMESTAMPTZ NOT NULL,
  finished_at      TIMESTAMPTZ NOT NULL
);`,
	},
	{
		Name: "create_index_validation_runs_started_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_validation_runs_started_at ON validation_runs (started_at);`,
	},
	{
		Name: "create_index_validation_runs_email",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_validation_runs_email ON validation_runs (email);`,
	},
	{
		Name: "create_index_validation_runs_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_validation_runs_status ON validation_runs (status);`,
	},
}

// EnsureMigrated applies every step inside one transaction. Steps are
// idempotent, so a partially built schema is completed on the next start.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) (err error) {
	start := time.Now()
	log = log.With("component", "database", "db_host", dbHost)

	log.Info("db_migration_start", "status", "in_progress")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Debug("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}
