// Package auditapi talks to the remote PDF audit service over HTTP.
package auditapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/medqc/stacaudit/internal/domain"
)

const (
	// AuditPath is the service endpoint that audits a PDF.
	AuditPath = "/audit/pdf_stac"

	// ElapsedHeader carries the server-side processing time in milliseconds.
	ElapsedHeader = "X-Elapsed-ms"

	fileField = "file"
)

// DebugPaths lists the service's diagnostic endpoints.
var DebugPaths = map[string]string{
	"llm-ping":      "/debug/llm_ping",
	"env":           "/debug/env",
	"ollama-tags":   "/debug/ollama/tags",
	"ollama-schema": "/debug/ollama/schema",
}

// Client submits documents to the audit service. It implements domain.AuditClient.
type Client struct {
	base   string
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithLogger sets the client's logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New creates a client for the service at base, e.g. http://localhost:8000.
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Base returns the service address the client talks to.
func (c *Client) Base() string { return c.base }

// AuditURL builds the audit endpoint address. The human and format parameters
// are only added in human-readable mode, and format only when it is set.
func (c *Client) AuditURL(human bool, format string) string {
	target := c.base + AuditPath
	if !human {
		return target
	}
	q := url.Values{}
	q.Set("human", "true")
	if format != "" {
		q.Set("format", format)
	}
	return target + "?" + q.Encode()
}

// Submit posts the request's document as multipart form data and returns the
// raw response. Non-2xx statuses are not errors; only transport failures are.
func (c *Client) Submit(ctx context.Context, req domain.AuditRequest) (*domain.AuditResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, contentType, err := encodeDocument(req.File)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}

	target := c.AuditURL(req.HumanMode, req.Format)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	c.logger.Debug("submitting document", slog.String("url", target), slog.String("file", req.File.Name))
	return c.do(httpReq)
}

// Debug fetches one of the service's diagnostic endpoints.
func (c *Client) Debug(ctx context.Context, path string) (*domain.AuditResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return c.do(httpReq)
}

func (c *Client) do(httpReq *http.Request) (*domain.AuditResponse, error) {
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling audit service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	out := &domain.AuditResponse{
		StatusCode:    resp.StatusCode,
		Status:        resp.Status,
		ContentType:   resp.Header.Get("Content-Type"),
		Body:          string(data),
		ServerElapsed: parseElapsed(resp.Header.Get(ElapsedHeader)),
	}
	c.logger.Debug("audit service responded",
		slog.Int("status", resp.StatusCode),
		slog.String("content_type", out.ContentType),
		slog.Int("bytes", len(data)),
	)
	return out, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeDocument writes the document as the "file" part. Unlike
// multipart.Writer.CreateFormFile it keeps the document's own media type.
func encodeDocument(doc *domain.Document) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	mediaType := doc.MediaType
	if mediaType == "" {
		mediaType = "application/pdf"
	}
	name := filepath.Base(doc.Name)
	if name == "." || name == string(filepath.Separator) {
		name = "document.pdf"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fileField, quoteEscaper.Replace(name)))
	h.Set("Content-Type", mediaType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func parseElapsed(v string) time.Duration {
	if v == "" {
		return 0
	}
	ms, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || ms < 0 {
		return 0
	}
	return time.Duration(math.Round(ms * float64(time.Millisecond)))
}
