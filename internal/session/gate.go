// Package session gates the approvals form behind a shared-secret login.
package session

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"productapprovals/internal/config"
)

// Cookie names and the literal value that marks a browser as authenticated.
const (
	EmailCookie       = "bp_email"
	FormCorrectCookie = "bp_form_correct"
	FormCorrectValue  = "True"
)

const (
	keyFormCorrect = "form_correct"
	keyEmail       = "email"
)

var (
	ErrInvalidEmail      = errors.New("Please enter a valid email")
	ErrIncorrectPassword = errors.New("Password is incorrect")
)

var emailPattern = regexp.MustCompile(`^.+@.+\..+`)

// Credentials is what the login form submits.
type Credentials struct {
	Email    string `form:"email" validate:"approvals_email"`
	Password string `form:"password"`
}

// Gate checks credentials and remembers authenticated browsers.
type Gate struct {
	secret   []byte
	store    *session.Store
	validate *validator.Validate
	ttl      time.Duration
	secure   bool
	log      *slog.Logger
}

// New builds a gate backed by an in-memory fiber session store.
func New(cfg config.SessionConfig, log *slog.Logger) *Gate {
	v := validator.New()
	_ = v.RegisterValidation("approvals_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})

	return &Gate{
		secret: []byte(cfg.Password),
		store: session.New(session.Config{
			Expiration:     cfg.CookieTTL,
			CookieSecure:   cfg.CookieSecure,
			CookieHTTPOnly: true,
			CookieSameSite: fiber.CookieSameSiteLaxMode,
		}),
		validate: v,
		ttl:      cfg.CookieTTL,
		secure:   cfg.CookieSecure,
		log:      log,
	}
}

// Authenticate validates the email shape first, then the password. Nothing
// else is checked.
func (g *Gate) Authenticate(creds Credentials) error {
	if err := g.validate.Struct(creds); err != nil {
		return ErrInvalidEmail
	}
	if subtle.ConstantTimeCompare([]byte(creds.Password), g.secret) != 1 {
		return ErrIncorrectPassword
	}
	return nil
}

// Login authenticates creds and, on success, marks the session and writes the
// two gate cookies.
func (g *Gate) Login(c *fiber.Ctx, creds Credentials) error {
	if err := g.Authenticate(creds); err != nil {
		g.log.Info("login rejected", "reason", err.Error())
		return err
	}

	sess, err := g.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(keyFormCorrect, true)
	sess.Set(keyEmail, creds.Email)
	if err := sess.Save(); err != nil {
		return err
	}

	g.setCookie(c, EmailCookie, creds.Email)
	g.setCookie(c, FormCorrectCookie, FormCorrectValue)
	g.log.Info("login accepted", "email", creds.Email)
	return nil
}

// Check reports whether the request is authenticated. A valid gate cookie
// without a session flag hydrates the session.
func (g *Gate) Check(c *fiber.Ctx) (string, bool) {
	sess, err := g.store.Get(c)
	if err != nil {
		g.log.Warn("load session", "error", err)
		return "", false
	}
	if ok, _ := sess.Get(keyFormCorrect).(bool); ok {
		email, _ := sess.Get(keyEmail).(string)
		return email, true
	}

	if c.Cookies(FormCorrectCookie) != FormCorrectValue {
		return "", false
	}
	email := c.Cookies(EmailCookie)
	sess.Set(keyFormCorrect, true)
	sess.Set(keyEmail, email)
	if err := sess.Save(); err != nil {
		g.log.Warn("save session", "error", err)
	}
	return email, true
}

// Logout drops the session and expires both gate cookies.
func (g *Gate) Logout(c *fiber.Ctx) error {
	sess, err := g.store.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Destroy(); err != nil {
		return err
	}
	for _, name := range []string{EmailCookie, FormCorrectCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			Secure:   g.secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return nil
}

// EmailLocalKey holds the authenticated email in fiber locals after Require.
const EmailLocalKey = "session_email"

// Require lets authenticated requests through. Others are redirected to the
// login page, or get 401 JSON under /api/.
func (g *Gate) Require() fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, ok := g.Check(c)
		if !ok {
			if strings.HasPrefix(c.Path(), "/api/") {
				return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
			}
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		c.Locals(EmailLocalKey, email)
		return c.Next()
	}
}

// Email returns the address stored by Require.
func Email(c *fiber.Ctx) string {
	s, _ := c.Locals(EmailLocalKey).(string)
	return s
}

func (g *Gate) setCookie(c *fiber.Ctx, name, value string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(g.ttl),
		Secure:   g.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
