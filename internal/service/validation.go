// Package service wires the verification pipeline to its observers and the
// run ledger.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"productapprovals/internal/metrics"
	"productapprovals/internal/model"
	"productapprovals/internal/pipeline"
	"productapprovals/internal/presentation"
)

// Validator runs one submission end to end: pipeline, metrics, presenter,
// then the ledger.
type Validator struct {
	pipeline *pipeline.Pipeline
	metrics  *metrics.Steps
	runs     RunService
	log      *slog.Logger
	now      func() time.Time
}

// ValidatorOption configures optional observers of a Validator.
type ValidatorOption func(*Validator)

// WithMetrics records every step in s.
func WithMetrics(s *metrics.Steps) ValidatorOption {
	return func(v *Validator) { v.metrics = s }
}

// WithRunLedger saves every finished run through r.
func WithRunLedger(r RunService) ValidatorOption {
	return func(v *Validator) { v.runs = r }
}

// NewValidator returns a Validator over p.
func NewValidator(p *pipeline.Pipeline, log *slog.Logger, opts ...ValidatorOption) *Validator {
	v := &Validator{pipeline: p, log: log, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// LedgerEnabled reports whether runs are being recorded.
func (v *Validator) LedgerEnabled() bool { return v.runs != nil }

// Validate runs the pipeline over in and renders it on p. It returns
// pipeline.ErrMissingDocuments without rendering anything when a document is
// absent. Otherwise the returned run is never nil and the error is the one
// that aborted the run, if any. Ledger failures are logged, not returned.
func (v *Validator) Validate(ctx context.Context, email string, in pipeline.Input, p presentation.Presenter) (*model.Run, error) {
	events, err := v.pipeline.Run(ctx, in)
	if err != nil {
		return nil, err
	}

	rec := NewRunRecorder(uuid.NewString(), email, in, v.now())
	events = pipeline.Tap(events, rec.Observe)
	if v.metrics != nil {
		events = pipeline.Tap(events, v.metrics.Observe)
	}

	log := v.log.With("run_id", rec.run.ID)
	runErr := presentation.Render(events, p, log)

	run := rec.Finish(v.now())
	log.Info("validation finished",
		"status", run.Status,
		"failed_step", run.FailedStep,
		"duration_ms", run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
	)

	if v.runs != nil {
		// The request may already be gone; the record is still wanted.
		stored, err := v.runs.Record(context.WithoutCancel(ctx), run, in)
		if err != nil {
			log.Error("record run", "error", err)
		} else {
			run = stored
		}
	}

	return run, runErr
}
