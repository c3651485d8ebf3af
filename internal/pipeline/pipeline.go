// Package pipeline runs the fixed sequence of approvals calls for one
// product submission and reports each step as an Event.
package pipeline

import (
	"context"
	"errors"
	"iter"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrMissingDocuments rejects a run before any call is made.
	ErrMissingDocuments = errors.New("both the product CSV and the company license PDF are required")
	// ErrStateMissing means a step ran without an identifier an earlier step should have produced.
	ErrStateMissing = errors.New("run state missing")
)

// Pipeline drives a Client through Steps in order.
type Pipeline struct {
	client Client
	steps  []Step
	tracer trace.Tracer
}

// New returns a pipeline over c.
func New(c Client) *Pipeline {
	return &Pipeline{
		client: c,
		steps:  steps,
		tracer: otel.Tracer("productapprovals/internal/pipeline"),
	}
}

// Run validates in and returns the lazy event sequence for one run.
//
// Ranging over the sequence performs the calls. Every step yields an
// EventPending followed by its resolving event; the first failure yields
// EventFailed and ends the sequence. Ranging again starts a fresh run from the
// first step. Breaking out of the loop stops further calls.
func (p *Pipeline) Run(ctx context.Context, in Input) (iter.Seq[Event], error) {
	if in.Product == nil || in.License == nil {
		return nil, ErrMissingDocuments
	}

	return func(yield func(Event) bool) {
		state := RunState{ProductFilename: in.Product.Filename}
		for _, step := range p.steps {
			if !yield(Event{Type: EventPending, Step: step.ID, Title: step.Pending, State: state}) {
				return
			}

			next, ev, err := p.exec(ctx, step, in, state)
			if err != nil {
				yield(Event{Type: EventFailed, Step: step.ID, Title: step.Title, Err: err, Elapsed: ev.Elapsed, State: state})
				return
			}

			state = next
			ev.Step, ev.Title, ev.State = step.ID, step.Title, state
			if !yield(ev) {
				return
			}
		}
	}, nil
}

func (p *Pipeline) exec(ctx context.Context, step Step, in Input, s RunState) (RunState, Event, error) {
	ctx, span := p.tracer.Start(ctx, string(step.ID),
		trace.WithAttributes(attribute.String("approvals.job_id", s.JobID)))
	defer span.End()

	start := time.Now()
	next, ev, err := step.run(ctx, p.client, in, s)
	ev.Elapsed = time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "step failed")
		return s, ev, err
	}
	if ev.Type == EventVerification {
		span.SetAttributes(attribute.Bool("approvals.valid", ev.Verification.Valid))
	}
	return next, ev, nil
}
