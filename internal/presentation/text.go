package presentation

import (
	"fmt"
	"io"
	"time"

	"productapprovals/internal/model"
)

// TextPresenter prints plain-text banners, one block per step.
type TextPresenter struct {
	w io.Writer
}

// NewTextPresenter writes to w.
func NewTextPresenter(w io.Writer) *TextPresenter {
	return &TextPresenter{w: w}
}

func (p *TextPresenter) AnnouncePending(title string) {
	fmt.Fprintf(p.w, "… %s\n", title)
}

func (p *TextPresenter) AnnounceCompleted(title string, elapsed time.Duration) {
	fmt.Fprintf(p.w, "✔ %s in %s seconds\n\n", title, Seconds(elapsed))
}

func (p *TextPresenter) AnnounceResult(title string, r model.VerificationResult, elapsed time.Duration) {
	fmt.Fprintf(p.w, "== %s (%s seconds)\nStatus: %s\n%s\n\n", title, Seconds(elapsed), Status(r.Valid), r.Explanation)
}

func (p *TextPresenter) AnnounceEnhancement(title string, r model.EnhancementResult, elapsed time.Duration) {
	fmt.Fprintf(p.w, "== %s (%s seconds)\nStatus: COMPLETED\nIdeal product description:\n\n%s\n\n%s\n\n", title, Seconds(elapsed), r.EnhancedValue, r.Explanation)
}

func (p *TextPresenter) AnnounceFatalError(message string) {
	fmt.Fprintf(p.w, "✘ %s\n", message)
}
