package presentation

import (
	"time"

	"productapprovals/internal/model"
)

// Entry kinds written by Transcript.
const (
	KindPending     = "pending"
	KindCompleted   = "completed"
	KindResult      = "result"
	KindEnhancement = "enhancement"
	KindError       = "error"
)

// Entry is one announcement in a Transcript.
type Entry struct {
	Kind          string  `json:"kind"`
	Title         string  `json:"title,omitempty"`
	Status        string  `json:"status,omitempty"`
	Explanation   string  `json:"explanation,omitempty"`
	EnhancedValue string  `json:"enhanced_value,omitempty"`
	Seconds       float64 `json:"seconds"`
	Message       string  `json:"message,omitempty"`
}

// Transcript records announcements in order. The JSON API returns it as-is.
type Transcript struct {
	Entries []Entry `json:"entries"`
}

func (t *Transcript) AnnouncePending(title string) {
	t.Entries = append(t.Entries, Entry{Kind: KindPending, Title: title})
}

func (t *Transcript) AnnounceCompleted(title string, elapsed time.Duration) {
	t.Entries = append(t.Entries, Entry{Kind: KindCompleted, Title: title, Status: "COMPLETED", Seconds: round2(elapsed)})
}

func (t *Transcript) AnnounceResult(title string, r model.VerificationResult, elapsed time.Duration) {
	t.Entries = append(t.Entries, Entry{
		Kind:        KindResult,
		Title:       title,
		Status:      Status(r.Valid),
		Explanation: r.Explanation,
		Seconds:     round2(elapsed),
	})
}

func (t *Transcript) AnnounceEnhancement(title string, r model.EnhancementResult, elapsed time.Duration) {
	t.Entries = append(t.Entries, Entry{
		Kind:          KindEnhancement,
		Title:         title,
		Status:        "COMPLETED",
		EnhancedValue: r.EnhancedValue,
		Explanation:   r.Explanation,
		Seconds:       round2(elapsed),
	})
}

func (t *Transcript) AnnounceFatalError(message string) {
	t.Entries = append(t.Entries, Entry{Kind: KindError, Message: message})
}

// Results returns the entries that resolved a step with a verdict or enhancement.
func (t *Transcript) Results() []Entry {
	var out []Entry
	for _, e := range t.Entries {
		if e.Kind == KindResult || e.Kind == KindEnhancement {
			out = append(out, e)
		}
	}
	return out
}

func round2(d time.Duration) float64 {
	return float64(d.Round(10*time.Millisecond).Milliseconds()) / 1000
}
