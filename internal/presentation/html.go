package presentation

import (
	"html/template"
	"io"
	"log/slog"
	"time"

	"productapprovals/internal/model"
)

var fragments = template.Must(template.New("fragments").Parse(`
{{define "pending"}}<div class="step pending"><span class="spinner"></span>{{.Title}}</div>
{{end}}
{{define "completed"}}<div class="step completed">&#10004; {{.Title}} in {{.Seconds}} seconds</div>
{{end}}
{{define "result"}}<section class="step result {{if .Valid}}passed{{else}}failed{{end}}">
<h3>{{.Title}} <small>({{.Seconds}} seconds)</small></h3>
<p><strong>Status:</strong> {{.Status}}</p>
<p>{{.Explanation}}</p>
</section>
{{end}}
{{define "enhancement"}}<section class="step enhancement">
<h3>{{.Title}} <small>({{.Seconds}} seconds)</small></h3>
<p><strong>Status:</strong> COMPLETED</p>
<p><strong>Ideal product description:</strong></p>
<blockquote>{{.EnhancedValue}}</blockquote>
<p>{{.Explanation}}</p>
</section>
{{end}}
{{define "error"}}<div class="step error" role="alert">{{.Message}}</div>
{{end}}
`))

type fragment struct {
	Title         string
	Seconds       string
	Valid         bool
	Status        string
	Explanation   string
	EnhancedValue string
	Message       string
}

type flusher interface {
	Flush() error
}

// HTMLPresenter writes one escaped HTML fragment per announcement and flushes
// after each so the browser sees progress while the run is in flight.
type HTMLPresenter struct {
	w   io.Writer
	log *slog.Logger
}

// NewHTMLPresenter writes fragments to w. Write errors (usually a closed
// connection) are logged, not returned.
func NewHTMLPresenter(w io.Writer, log *slog.Logger) *HTMLPresenter {
	return &HTMLPresenter{w: w, log: log}
}

func (p *HTMLPresenter) AnnouncePending(title string) {
	p.write("pending", fragment{Title: title})
}

func (p *HTMLPresenter) AnnounceCompleted(title string, elapsed time.Duration) {
	p.write("completed", fragment{Title: title, Seconds: Seconds(elapsed)})
}

func (p *HTMLPresenter) AnnounceResult(title string, r model.VerificationResult, elapsed time.Duration) {
	p.write("result", fragment{
		Title:       title,
		Seconds:     Seconds(elapsed),
		Valid:       r.Valid,
		Status:      Status(r.Valid),
		Explanation: r.Explanation,
	})
}

func (p *HTMLPresenter) AnnounceEnhancement(title string, r model.EnhancementResult, elapsed time.Duration) {
	p.write("enhancement", fragment{
		Title:         title,
		Seconds:       Seconds(elapsed),
		EnhancedValue: r.EnhancedValue,
		Explanation:   r.Explanation,
	})
}

func (p *HTMLPresenter) AnnounceFatalError(message string) {
	p.write("error", fragment{Message: message})
}

func (p *HTMLPresenter) write(name string, f fragment) {
	if err := fragments.ExecuteTemplate(p.w, name, f); err != nil {
		p.log.Warn("write fragment", "fragment", name, "error", err)
		return
	}
	if fl, ok := p.w.(flusher); ok {
		if err := fl.Flush(); err != nil {
			p.log.Warn("flush fragment", "fragment", name, "error", err)
		}
	}
}
