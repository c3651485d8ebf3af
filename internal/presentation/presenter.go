// Package presentation turns pipeline events into user-facing banners.
package presentation

import (
	"fmt"
	"iter"
	"log/slog"
	"time"

	"productapprovals/internal/model"
	"productapprovals/internal/pipeline"
)

// GenericFailure is the only error text an end user sees when a run aborts.
const GenericFailure = "An error occurred during the validation process. Please check the logs for more details."

// Presenter receives announcements synchronously, in run order.
type Presenter interface {
	AnnouncePending(title string)
	AnnounceCompleted(title string, elapsed time.Duration)
	AnnounceResult(title string, result model.VerificationResult, elapsed time.Duration)
	AnnounceEnhancement(title string, result model.EnhancementResult, elapsed time.Duration)
	AnnounceFatalError(message string)
}

// Render feeds events to p. On a failed step it logs the full error and shows
// only GenericFailure, then returns the error.
func Render(events iter.Seq[pipeline.Event], p Presenter, log *slog.Logger) error {
	for ev := range events {
		switch ev.Type {
		case pipeline.EventPending:
			p.AnnouncePending(ev.Title)
		case pipeline.EventCompleted:
			p.AnnounceCompleted(ev.Title, ev.Elapsed)
		case pipeline.EventVerification:
			p.AnnounceResult(ev.Title, Displayed(ev.Step, ev.Verification), ev.Elapsed)
		case pipeline.EventEnhancement:
			p.AnnounceEnhancement(ev.Title, ev.Enhancement, ev.Elapsed)
		case pipeline.EventFailed:
			log.Error("Error during validation",
				"step", ev.Step,
				"job_id", ev.State.JobID,
				"error", ev.Err,
			)
			p.AnnounceFatalError(GenericFailure)
			return ev.Err
		}
	}
	return nil
}

// Displayed returns the result as it must be shown. Product usage is always
// shown as failed; its explanation is kept verbatim.
func Displayed(step pipeline.StepID, r model.VerificationResult) model.VerificationResult {
	if step == pipeline.StepVerifyProductUsage {
		r.Valid = false
	}
	return r
}

// Seconds formats an elapsed time the way banners show it, e.g. "1.25".
func Seconds(d time.Duration) string {
	return fmt.Sprintf("%.2f", d.Seconds())
}

// Status is the banner label for a verdict.
func Status(valid bool) string {
	if valid {
		return "PASSED"
	}
	return "FAILED"
}
