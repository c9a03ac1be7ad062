package domain

import (
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"
)

// ErrNoDocument is returned when an audit is requested without a file.
var ErrNoDocument = errors.New("no document selected")

// Document is the file submitted to the audit service.
type Document struct {
	Name      string `json:"name"`
	Data      []byte `json:"-"`
	MediaType string `json:"media_type,omitempty"`
}

// AuditRequest is the input of one audit run.
type AuditRequest struct {
	File      *Document `json:"file"`
	HumanMode bool      `json:"human_mode"`
	Format    string    `json:"format,omitempty"`
}

// Validate rejects a request that has no document to submit.
func (r AuditRequest) Validate() error {
	if r.File == nil || len(r.File.Data) == 0 {
		return ErrNoDocument
	}
	return nil
}

// AuditResponse is the raw HTTP result produced by the audit service.
type AuditResponse struct {
	StatusCode    int           `json:"status_code"`
	Status        string        `json:"status"`
	ContentType   string        `json:"content_type"`
	Body          string        `json:"body"`
	ServerElapsed time.Duration `json:"server_elapsed,omitempty"`
}

// OK reports whether the service answered with a 2xx status.
func (r *AuditResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ErrorMessage is the text shown for a failed response: the body, or the
// status description when the body is empty.
func (r *AuditResponse) ErrorMessage() string {
	if r.Body != "" {
		return r.Body
	}
	if r.Status != "" {
		return r.Status
	}
	if text := http.StatusText(r.StatusCode); text != "" {
		return text
	}
	return "request failed"
}

// ContentKind tells how a successful response body must be interpreted.
type ContentKind string

const (
	ContentStructured ContentKind = "structured"
	ContentFreeform   ContentKind = "freeform"
)

// Classify decides whether a response carries structured data or freeform text
// from its declared content type.
func Classify(resp *AuditResponse) ContentKind {
	if resp == nil {
		return ContentFreeform
	}
	mediaType, _, err := mime.ParseMediaType(resp.ContentType)
	if err != nil {
		// Fall back to a substring match on malformed headers.
		if strings.Contains(strings.ToLower(resp.ContentType), "application/json") {
			return ContentStructured
		}
		return ContentFreeform
	}
	if mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") {
		return ContentStructured
	}
	return ContentFreeform
}
