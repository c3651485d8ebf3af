package pipeline

import (
	"iter"
	"time"

	"productapprovals/internal/model"
)

// EventType tells a renderer what an Event carries.
type EventType int

const (
	// EventPending is emitted before a step's network call starts.
	EventPending EventType = iota
	// EventCompleted resolves a step that has no verdict (uploads, certificate retrieval).
	EventCompleted
	// EventVerification resolves a step with a VerificationResult.
	EventVerification
	// EventEnhancement resolves a step with an EnhancementResult.
	EventEnhancement
	// EventFailed ends the run. Nothing follows it.
	EventFailed
)

func (t EventType) String() string {
	switch t {
	case EventPending:
		return "pending"
	case EventCompleted:
		return "completed"
	case EventVerification:
		return "verification"
	case EventEnhancement:
		return "enhancement"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is one item of the sequence returned by Pipeline.Run.
type Event struct {
	Type  EventType
	Step  StepID
	Title string

	Verification model.VerificationResult
	Enhancement  model.EnhancementResult

	// Elapsed is the wall-clock time of the step's network call.
	Elapsed time.Duration
	Err     error

	// State is the run state after the step (before it, for EventFailed).
	State RunState
}

// Terminal reports whether the event resolves a step.
func (e Event) Terminal() bool { return e.Type != EventPending }

// Tap calls fn for every event of seq before passing it on.
func Tap(seq iter.Seq[Event], fn func(Event)) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for ev := range seq {
			fn(ev)
			if !yield(ev) {
				return
			}
		}
	}
}

// Outcome is the ledger label of a resolving event (model.StepPassed and
// friends), or "" for EventPending. It reflects the verdict the service
// returned, not what a renderer displays.
func (e Event) Outcome() string {
	switch e.Type {
	case EventVerification:
		if e.Verification.Valid {
			return model.StepPassed
		}
		return model.StepRejected
	case EventCompleted, EventEnhancement:
		return model.StepCompleted
	case EventFailed:
		return model.StepErrored
	}
	return ""
}
