package service

import (
	"time"

	"productapprovals/internal/model"
	"productapprovals/internal/pipeline"
)

// InterruptedMessage is the error message stored for a run whose event
// sequence ended without a failure or the final step.
const InterruptedMessage = "run interrupted before the last step"

// RunRecorder builds the ledger record of a run from its events.
type RunRecorder struct {
	run model.Run
}

// NewRunRecorder starts a record for a run over in.
func NewRunRecorder(id, email string, in pipeline.Input, startedAt time.Time) *RunRecorder {
	r := &RunRecorder{run: model.Run{
		ID:        id,
		Email:     email,
		Steps:     []model.RunStep{},
		StartedAt: startedAt.UTC(),
	}}
	if in.Product != nil {
		r.run.ProductFilename = in.Product.Filename
	}
	if in.License != nil {
		r.run.LicenseFilename = in.License.Filename
	}
	return r
}

// Observe appends the outcome of every resolving event. Use it with pipeline.Tap.
func (r *RunRecorder) Observe(ev pipeline.Event) {
	outcome := ev.Outcome()
	if outcome == "" {
		return
	}

	r.run.Steps = append(r.run.Steps, model.RunStep{
		Step:      string(ev.Step),
		Outcome:   outcome,
		ElapsedMS: ev.Elapsed.Milliseconds(),
	})
	if ev.State.JobID != "" {
		r.run.ProductJobID = ev.State.JobID
	}
	if ev.State.CompanyJobID != "" {
		r.run.CompanyJobID = ev.State.CompanyJobID
	}

	if ev.Type == pipeline.EventFailed {
		r.run.Status = model.RunFailed
		r.run.FailedStep = string(ev.Step)
		if ev.Err != nil {
			r.run.ErrorMessage = ev.Err.Error()
		}
	}
}

// Finish closes the record. A run without a failure succeeds only if every
// step resolved. Validate always drains the sequence, so a short record only
// comes from a caller that stopped observing early.
func (r *RunRecorder) Finish(finishedAt time.Time) *model.Run {
	run := r.run
	run.Steps = append([]model.RunStep(nil), r.run.Steps...)
	run.FinishedAt = finishedAt.UTC()

	if run.Status == "" {
		if len(run.Steps) == len(pipeline.Steps()) {
			run.Status = model.RunSucceeded
		} else {
			run.Status = model.RunFailed
			run.ErrorMessage = InterruptedMessage
		}
	}
	return &run
}
