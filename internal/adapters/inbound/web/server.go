// Package web serves the browser page that drives audit runs.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/medqc/stacaudit/internal/adapters/outbound/docfile"
	"github.com/medqc/stacaudit/internal/adapters/outbound/htmlview"
	"github.com/medqc/stacaudit/internal/application"
	"github.com/medqc/stacaudit/internal/domain"
)

// MaxUploadBytes bounds the size of an uploaded document.
const MaxUploadBytes = 64 << 20

// Server exposes one Workflow over HTTP. All visitors share its screen.
type Server struct {
	router   *chi.Mux
	workflow *application.Workflow
	logger   *slog.Logger

	mu   sync.Mutex
	page htmlview.PageOptions
}

// New creates a Server. page holds the version and the initial form values.
func New(workflow *application.Workflow, logger *slog.Logger, page htmlview.PageOptions) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		workflow: workflow,
		logger:   logger,
		page:     page,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(RequestIDMiddleware)
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "stacaudit-web")
	})

	s.router.Get("/", s.handlePage)
	s.router.Post("/audit", s.handleAudit)
	s.router.Get("/screen", s.handleScreen)
	s.router.Get("/download/{kind}", s.handleDownload)
	s.router.Get("/healthz", s.handleHealth)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	opts := s.page
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := htmlview.RenderPage(w, s.workflow.Screen(), opts); err != nil {
		s.logger.Error("rendering page", slog.String("error", err.Error()))
	}
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		http.Error(w, "invalid upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	human, _ := strconv.ParseBool(r.FormValue("human"))
	format := r.FormValue("format")
	if format != "" && !domain.IsKnownFormat(format) {
		http.Error(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.page.Human = human
	s.page.Format = format
	s.mu.Unlock()

	req := domain.AuditRequest{HumanMode: human, Format: format}
	doc, err := readUpload(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.File = doc

	s.workflow.RunAudit(r.Context(), req)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// readUpload returns the uploaded file, or nil when none was chosen.
func readUpload(r *http.Request) (*domain.Document, error) {
	f, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return docfile.FromBytes(header.Filename, data), nil
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.workflow.Screen())
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.ParseArtifactKind(chi.URLParam(r, "kind"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	artifact, err := s.workflow.Download(kind)
	if errors.Is(err, application.ErrDownloadDisabled) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		s.logger.Error("generating artifact", slog.String("kind", string(kind)), slog.String("error", err.Error()))
		http.Error(w, "generating artifact failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", artifact.MediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Content)))
	_, _ = w.Write(artifact.Content)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
