// Package metrics exposes Prometheus collectors for verification steps.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"productapprovals/internal/pipeline"
)

// Steps counts and times pipeline steps.
type Steps struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewSteps registers the step collectors with reg.
func NewSteps(reg prometheus.Registerer) (*Steps, error) {
	s := &Steps{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "approvals_steps_total",
				Help: "Verification steps resolved, by step and outcome.",
			},
			[]string{"step", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "approvals_step_duration_seconds",
				Help:    "Wall-clock time of the remote call behind each step.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"step"},
		),
	}

	for _, c := range []prometheus.Collector{s.total, s.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Observe records a resolved or failed step. Pending events are ignored.
// Product usage is counted with its real verdict.
func (s *Steps) Observe(ev pipeline.Event) {
	outcome := ev.Outcome()
	if outcome == "" {
		return
	}
	step := string(ev.Step)
	s.total.WithLabelValues(step, outcome).Inc()
	s.duration.WithLabelValues(step).Observe(ev.Elapsed.Seconds())
}
