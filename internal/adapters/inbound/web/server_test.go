package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/medqc/stacaudit/internal/adapters/inbound/web"
	"github.com/medqc/stacaudit/internal/adapters/outbound/htmlview"
	"github.com/medqc/stacaudit/internal/application"
	"github.com/medqc/stacaudit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	mu   sync.Mutex
	reqs []domain.AuditRequest
	resp *domain.AuditResponse
}

func (c *recordingClient) Submit(_ context.Context, req domain.AuditRequest) (*domain.AuditResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reqs = append(c.reqs, req)
	return c.resp, nil
}

const structuredBody = `{"violations":[{"rule_id":"STAC-001","severity":"high","evidence":"<b>bad</b>"}],"pretty_text":"# Report","summary":{"passes":3,"violations":1}}`

func newServer(t *testing.T, resp *domain.AuditResponse) (*web.Server, *recordingClient) {
	t.Helper()
	client := &recordingClient{resp: resp}
	wf := application.NewWorkflow(client, application.WithAPIBase("http://audit.test"))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return web.New(wf, logger, htmlview.PageOptions{Version: "test"}), client
}

func uploadForm(t *testing.T, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func post(t *testing.T, srv http.Handler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/audit", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func get(srv http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_PageIdle(t *testing.T) {
	srv, _ := newServer(t, nil)

	rec := get(srv, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	body := rec.Body.String()
	assert.Contains(t, body, `<span id="state">idle</span>`)
	assert.Contains(t, body, `id="dlJson" type="button" disabled`)
}

func TestServer_AuditStructured(t *testing.T) {
	srv, client := newServer(t, &domain.AuditResponse{StatusCode: 200, ContentType: "application/json", Body: structuredBody})
	body, ct := uploadForm(t, "scene.pdf", []byte("%PDF-1.7\n"), nil)

	rec := post(t, srv, body, ct)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	require.Len(t, client.reqs, 1)
	assert.Equal(t, "scene.pdf", client.reqs[0].File.Name)
	assert.Equal(t, "application/pdf", client.reqs[0].File.MediaType)
	assert.False(t, client.reqs[0].HumanMode)

	page := get(srv, "/").Body.String()
	assert.Contains(t, page, `<span id="state">succeeded</span>`)
	assert.Contains(t, page, "&lt;b&gt;bad&lt;/b&gt;")
	assert.NotContains(t, page, "<b>bad</b>")
}

func TestServer_AuditHumanFormat(t *testing.T) {
	srv, client := newServer(t, &domain.AuditResponse{StatusCode: 200, ContentType: "text/markdown", Body: "# ok"})
	body, ct := uploadForm(t, "scene.pdf", []byte("%PDF-1.7\n"), map[string]string{"human": "true", "format": "md"})

	rec := post(t, srv, body, ct)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, client.reqs, 1)
	assert.True(t, client.reqs[0].HumanMode)
	assert.Equal(t, "md", client.reqs[0].Format)

	page := get(srv, "/").Body.String()
	assert.Contains(t, page, `value="true" checked`)
	assert.Contains(t, page, `<option value="md" selected>`)
}

func TestServer_AuditWithoutFileShowsNotice(t *testing.T) {
	srv, client := newServer(t, nil)
	body, ct := uploadForm(t, "", nil, map[string]string{"human": "false"})

	rec := post(t, srv, body, ct)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, client.reqs, "no request without a file")
	page := get(srv, "/").Body.String()
	assert.Contains(t, page, "Select a PDF file to audit.")
	assert.Contains(t, page, `<span id="state">idle</span>`)
}

func TestServer_AuditUnknownFormat(t *testing.T) {
	srv, client := newServer(t, nil)
	body, ct := uploadForm(t, "scene.pdf", []byte("%PDF-1.7\n"), map[string]string{"format": "docx"})

	rec := post(t, srv, body, ct)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, client.reqs)
}

func TestServer_AuditNotMultipart(t *testing.T) {
	srv, _ := newServer(t, nil)

	rec := post(t, srv, bytes.NewBufferString("file=x"), "application/x-www-form-urlencoded")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_DownloadDisabledBeforeRun(t *testing.T) {
	srv, _ := newServer(t, nil)

	for _, kind := range []string{"json", "markdown", "spreadsheet"} {
		rec := get(srv, "/download/"+kind)
		assert.Equal(t, http.StatusConflict, rec.Code, kind)
	}
}

func TestServer_DownloadUnknownKind(t *testing.T) {
	srv, _ := newServer(t, nil)

	rec := get(srv, "/download/pdf")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_DownloadAfterRun(t *testing.T) {
	srv, _ := newServer(t, &domain.AuditResponse{StatusCode: 200, ContentType: "application/json", Body: structuredBody})
	body, ct := uploadForm(t, "scene.pdf", []byte("%PDF-1.7\n"), nil)
	require.Equal(t, http.StatusSeeOther, post(t, srv, body, ct).Code)

	rec := get(srv, "/download/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="audit.json"`, rec.Header().Get("Content-Disposition"))
	assert.JSONEq(t, structuredBody, rec.Body.String())

	rec = get(srv, "/download/md")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown", rec.Header().Get("Content-Type"))
	assert.Equal(t, "# Report", rec.Body.String())
}

func TestServer_ScreenJSON(t *testing.T) {
	srv, _ := newServer(t, &domain.AuditResponse{StatusCode: 500, Status: "500 Internal Server Error"})
	body, ct := uploadForm(t, "scene.pdf", []byte("%PDF-1.7\n"), nil)
	require.Equal(t, http.StatusSeeOther, post(t, srv, body, ct).Code)

	rec := get(srv, "/screen")
	require.Equal(t, http.StatusOK, rec.Code)

	var screen map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &screen))
	assert.Equal(t, "failed", screen["state"])
	assert.True(t, strings.HasPrefix(screen["output"].(string), "Error: "))
	assert.Equal(t, true, screen["trigger_enabled"])
}

func TestServer_Health(t *testing.T) {
	srv, _ := newServer(t, nil)

	rec := get(srv, "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_ListenAndServeStopsOnCancel(t *testing.T) {
	srv, _ := newServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, srv.ListenAndServe(ctx, "127.0.0.1:0"))
}
