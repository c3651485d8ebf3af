package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"productapprovals/internal/model"
	"productapprovals/internal/repository"
)

// RunPostgres is the PostgreSQL implementation of repository.RunRepository.
type RunPostgres struct {
	db *sql.DB
}

// NewRunPostgres creates a new RunPostgres repository.
func NewRunPostgres(db *sql.DB) *RunPostgres {
	return &RunPostgres{db: db}
}

var _ repository.RunRepository = (*RunPostgres)(nil)

const runColumns = `id, email, product_filename, license_filename, status, failed_step, error_message,
		product_job_id, company_job_id, steps, product_key, license_key, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*model.Run, error) {
	var (
		r     model.Run
		steps []byte
	)
	if err := s.Scan(
		&r.ID,
		&r.Email,
		&r.ProductFilename,
		&r.LicenseFilename,
		&r.Status,
		&r.FailedStep,
		&r.ErrorMessage,
		&r.ProductJobID,
		&r.CompanyJobID,
		&steps,
		&r.ProductKey,
		&r.LicenseKey,
		&r.StartedAt,
		&r.FinishedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(steps, &r.Steps); err != nil {
		return nil, fmt.Errorf("decode steps of run %s: %w", r.ID, err)
	}
	return &r, nil
}

// Create inserts a run row and returns the stored record.
func (r *RunPostgres) Create(ctx context.Context, run *model.Run) (*model.Run, error) {
	steps := run.Steps
	if steps == nil {
		steps = []model.RunStep{}
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("encode steps: %w", err)
	}

	q := `
		INSERT INTO validation_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + runColumns
	row := r.db.QueryRowContext(ctx, q,
		run.ID,
		run.Email,
		run.ProductFilename,
		run.LicenseFilename,
		run.Status,
		run.FailedStep,
		run.ErrorMessage,
		run.ProductJobID,
		run.CompanyJobID,
		stepsJSON,
		run.ProductKey,
		run.LicenseKey,
		run.StartedAt,
		run.FinishedAt,
	)
	return scanRun(row)
}

// FindByID fetches a single run by its ID.
func (r *RunPostgres) FindByID(ctx context.Context, id string) (*model.Run, error) {
	q := `SELECT ` + runColumns + ` FROM validation_runs WHERE id = $1`
	return scanRun(r.db.QueryRowContext(ctx, q, id))
}

// List returns runs using LIMIT/OFFSET pagination and a total count.
func (r *RunPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Run], error) {
	const qCount = `SELECT COUNT(*) FROM validation_runs`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + runColumns + `
		FROM validation_runs
		ORDER BY started_at DESC, id DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Run]{
		Items: items,
		Total: total,
	}, nil
}
