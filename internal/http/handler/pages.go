package handler

import (
	"bufio"
	"embed"
	"errors"
	"html/template"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"productapprovals/internal/http/middleware"
	"productapprovals/internal/presentation"
	"productapprovals/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type formPage struct {
	Email string
	Error string
}

type resultsPage struct {
	Product string
	License string
}

func renderPage(c *fiber.Ctx, status int, name string, data any) error {
	c.Status(status).Type("html", "utf-8")
	return pages.ExecuteTemplate(c.Response().BodyWriter(), name, data)
}

func (h *Handler) index(c *fiber.Ctx) error {
	if email, ok := h.gate.Check(c); ok {
		return renderPage(c, fiber.StatusOK, "upload", formPage{Email: email})
	}
	return renderPage(c, fiber.StatusOK, "login", formPage{})
}

func (h *Handler) login(c *fiber.Ctx) error {
	var creds session.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return fiber.ErrBadRequest
	}

	if err := h.gate.Login(c, creds); err != nil {
		if errors.Is(err, session.ErrInvalidEmail) || errors.Is(err, session.ErrIncorrectPassword) {
			return renderPage(c, fiber.StatusUnauthorized, "login", formPage{Email: creds.Email, Error: err.Error()})
		}
		return err
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) logout(c *fiber.Ctx) error {
	if err := h.gate.Logout(c); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// validatePage streams the results page: one fragment per announcement,
// flushed as the run progresses.
func (h *Handler) validatePage(c *fiber.Ctx) error {
	email := session.Email(c)

	in, err := readUploads(c)
	if err != nil {
		return err
	}
	if !complete(in) {
		return renderPage(c, fiber.StatusBadRequest, "upload", formPage{Email: email, Error: msgFilesRequired})
	}
	if err := checkTypes(in); err != nil {
		return renderPage(c, fiber.StatusBadRequest, "upload", formPage{Email: email, Error: err.Error()})
	}

	// The stream writer runs after this handler returns, when c is no longer valid.
	ctx := c.UserContext()
	log := requestLogger(h.log, c)
	page := resultsPage{Product: in.Product.Filename, License: in.License.Filename}

	c.Status(fiber.StatusOK).Type("html", "utf-8")
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Set("X-Accel-Buffering", "no")
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		if err := pages.ExecuteTemplate(w, "results_head", page); err != nil {
			log.Warn("write results page", "error", err)
			return
		}
		_ = w.Flush()

		// The generic failure is already on the page; the detail is logged by Render.
		_, _ = h.validator.Validate(ctx, email, in, presentation.NewHTMLPresenter(w, log))

		if err := pages.ExecuteTemplate(w, "results_foot", page); err != nil {
			log.Warn("write results page", "error", err)
		}
		_ = w.Flush()
	})
	return nil
}

func requestLogger(log *slog.Logger, c *fiber.Ctx) *slog.Logger {
	return log.With("request_id", middleware.RequestIDFrom(c))
}
