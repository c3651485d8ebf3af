package model

import "time"

// Run statuses.
const (
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// Step outcomes recorded in the run ledger.
const (
	StepPassed    = "passed"
	StepRejected  = "rejected"
	StepCompleted = "completed"
	StepErrored   = "errored"
)

// Run is the ledger record of one pipeline run.
// This is a pure domain model with no database-specific dependencies or tags.
type Run struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	ProductFilename string    `json:"product_filename"`
	LicenseFilename string    `json:"license_filename"`
	Status          string    `json:"status"`
	FailedStep      string    `json:"failed_step,omitempty"`
	ErrorMessage    string    `json:"-"`
	ProductJobID    string    `json:"product_job_id,omitempty"`
	CompanyJobID    string    `json:"company_job_id,omitempty"`
	Steps           []RunStep `json:"steps"`
	ProductKey      string    `json:"product_key,omitempty"`
	LicenseKey      string    `json:"license_key,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// RunStep is the outcome of one pipeline step inside a Run.
type RunStep struct {
	Step      string `json:"step"`
	Outcome   string `json:"outcome"`
	ElapsedMS int64  `json:"elapsed_ms"`
}
