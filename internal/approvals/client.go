// Package approvals is the HTTP client for the remote product approvals API.
package approvals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"productapprovals/internal/config"
	"productapprovals/internal/logging"
	"productapprovals/internal/model"
)

// BasePath is prefixed to every endpoint path.
const BasePath = "/public/v1"

// Client performs one authenticated request per call against the approvals API.
// It is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for per-call debug lines.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = logging.Named(l, "approvals") }
}

// New builds a client for cfg.Host. No timeout is set beyond the transport defaults.
func New(cfg config.ApprovalsConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.Host, "/") + BasePath,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the resolved API root, e.g. https://host/public/v1.
func (c *Client) BaseURL() string { return c.baseURL }

// postFile uploads doc as the multipart field "file" and returns the raw response body.
func (c *Client) postFile(ctx context.Context, path, purpose string, doc *model.UploadedDocument) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(doc.Filename)))
	ct := doc.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}

	return c.do(ctx, path, purpose, w.FormDataContentType(), &buf)
}

// postJSON sends payload as a JSON body and returns the raw response body.
func (c *Client) postJSON(ctx context.Context, path, purpose string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", path, err)
	}
	return c.do(ctx, path, purpose, "application/json", bytes.NewReader(body))
}

func (c *Client) do(ctx context.Context, path, purpose, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, &TransferError{Purpose: purpose, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.apiKey, "")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "approvals request failed", "path", path, "error", err)
		return nil, &TransferError{Purpose: purpose, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransferError{Purpose: purpose, StatusCode: resp.StatusCode, Err: err}
	}

	c.log.DebugContext(ctx, "approvals request",
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, &TransferError{Purpose: purpose, StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// field decodes the named top-level field of a JSON response body into out.
func field(body []byte, name string, out any) error {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	raw, ok := env[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingField, name)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %q: %w", name, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
