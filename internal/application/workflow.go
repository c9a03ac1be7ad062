package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/medqc/stacaudit/internal/domain"
)

const (
	progressMessage   = "Uploading and analyzing…"
	validationMessage = "Select a PDF file to audit."
	errorPrefix       = "Error: "
)

// Workflow orchestrates audit runs: it validates input, submits the document,
// interprets the response and updates the Screen it owns.
//
// Runs may overlap (watch mode, several browser tabs). Each run takes a
// sequence number when it starts and a response is applied only while that
// number is still the latest one.
type Workflow struct {
	client  domain.AuditClient
	history domain.RunHistory
	store   domain.ResponseStore
	git     domain.GitInfo
	sheet   domain.SpreadsheetBuilder
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
	newID   func() string

	apiBase  string
	stateDir string
	timeout  time.Duration

	mu     sync.Mutex
	seq    uint64
	screen Screen
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithHistory records one entry per settled run under stateDir.
func WithHistory(h domain.RunHistory) Option { return func(w *Workflow) { w.history = h } }

// WithResponseStore keeps the last successful response under stateDir.
func WithResponseStore(s domain.ResponseStore) Option { return func(w *Workflow) { w.store = s } }

// WithGitInfo attaches the commit of the document's repository to history.
func WithGitInfo(g domain.GitInfo) Option { return func(w *Workflow) { w.git = g } }

// WithSpreadsheet enables the audit.xlsx download for runs with violations.
func WithSpreadsheet(b domain.SpreadsheetBuilder) Option { return func(w *Workflow) { w.sheet = b } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(w *Workflow) { w.logger = l } }

// WithStateDir sets the directory that holds history and the stored response.
func WithStateDir(dir string) Option { return func(w *Workflow) { w.stateDir = dir } }

// WithAPIBase sets the service address shown on the screen and stored with results.
func WithAPIBase(base string) Option { return func(w *Workflow) { w.apiBase = base } }

// WithTimeout bounds each run. Zero means no deadline.
func WithTimeout(d time.Duration) Option { return func(w *Workflow) { w.timeout = d } }

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(w *Workflow) { w.now = now } }

// WithIDGenerator overrides run ID generation, for tests.
func WithIDGenerator(gen func() string) Option { return func(w *Workflow) { w.newID = gen } }

// NewWorkflow creates a Workflow around an audit client.
func NewWorkflow(client domain.AuditClient, opts ...Option) *Workflow {
	w := &Workflow{
		client:   client,
		logger:   slog.Default(),
		tracer:   otel.Tracer("github.com/medqc/stacaudit/internal/application"),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		stateDir: ".",
	}
	for _, opt := range opts {
		opt(w)
	}
	w.screen = newScreen(w.apiBase)
	return w
}

// Screen returns a snapshot of the display state.
func (w *Workflow) Screen() Screen {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.screen.clone()
}

// RunAudit performs one audit run. It never returns an error: every outcome
// ends up on the Screen.
func (w *Workflow) RunAudit(ctx context.Context, req domain.AuditRequest) {
	if err := req.Validate(); err != nil {
		w.mu.Lock()
		w.screen.Notice = validationMessage
		w.mu.Unlock()
		w.logger.Warn("audit rejected", slog.String("error", err.Error()))
		return
	}

	seq, runID := w.begin()
	logger := w.logger.With(slog.String("run_id", runID), slog.String("file", req.File.Name))

	ctx, span := w.tracer.Start(ctx, "audit.run", trace.WithAttributes(
		attribute.String("audit.run_id", runID),
		attribute.String("audit.file", req.File.Name),
		attribute.Bool("audit.human", req.HumanMode),
	))
	defer span.End()

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	logger.Info("audit started", slog.Int("bytes", len(req.File.Data)), slog.Bool("human", req.HumanMode))
	start := w.now()
	resp, err := w.client.Submit(ctx, req)
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("audit timed out after %s: %w", w.timeout, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	}

	entry, applied := w.settle(seq, runID, resp, err)
	if !applied {
		logger.Info("discarded result of superseded run")
		return
	}
	logger.Info("audit settled",
		slog.String("state", string(entry.State)),
		slog.Int("violations", entry.Violations),
		slog.Duration("duration", w.now().Sub(start)),
	)

	w.record(logger, req, resp, entry)
}

// Replay settles a previously received response as a fresh run, without any
// network activity.
func (w *Workflow) Replay(ctx context.Context, resp domain.AuditResponse) {
	_, span := w.tracer.Start(ctx, "audit.replay")
	defer span.End()

	seq, runID := w.begin()
	w.settle(seq, runID, &resp, nil)
}

// Download returns the artifact behind an enabled download control.
func (w *Workflow) Download(kind domain.ArtifactKind) (domain.Artifact, error) {
	w.mu.Lock()
	ctrl, ok := w.screen.control(kind)
	var c DownloadControl
	if ok {
		c = *ctrl
	}
	w.mu.Unlock()

	if !ok {
		return domain.Artifact{}, fmt.Errorf("unknown download %q", kind)
	}
	return c.Activate()
}

// Export activates a download control and hands the artifact to sink.
func (w *Workflow) Export(ctx context.Context, kind domain.ArtifactKind, sink domain.ArtifactSink) (string, error) {
	artifact, err := w.Download(kind)
	if err != nil {
		return "", err
	}
	location, err := sink.Save(ctx, artifact)
	if err != nil {
		return "", fmt.Errorf("saving %s: %w", artifact.Filename, err)
	}
	w.logger.Info("artifact saved", slog.String("file", artifact.Filename), slog.String("location", location))
	return location, nil
}

// begin starts a run: it clears everything the previous run displayed and
// disables the controls until the run settles.
func (w *Workflow) begin() (uint64, string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.seq++
	runID := w.newID()
	w.screen = newScreen(w.apiBase)
	w.screen.RunID = runID
	w.screen.State = domain.StateRunning
	w.screen.Output = progressMessage
	w.screen.TriggerEnabled = false
	return w.seq, runID
}

// settle applies a run's outcome if the run is still the latest one.
func (w *Workflow) settle(seq uint64, runID string, resp *domain.AuditResponse, err error) (domain.RunEntry, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if seq != w.seq {
		return domain.RunEntry{}, false
	}

	s := &w.screen
	entry := domain.RunEntry{RunID: runID}

	switch {
	case err != nil:
		s.State = domain.StateFailed
		s.Output = errorPrefix + err.Error()
	case !resp.OK():
		s.State = domain.StateFailed
		s.Output = errorPrefix + resp.ErrorMessage()
	default:
		w.apply(s, resp)
	}

	if resp != nil {
		entry.StatusCode = resp.StatusCode
		if resp.ServerElapsed > 0 {
			s.ServerElapsed = resp.ServerElapsed.String()
		}
	}
	s.TriggerEnabled = true

	entry.State = s.State
	entry.ContentKind = s.Kind
	entry.Violations = len(s.Violations.Items)
	return entry, true
}

// apply interprets a successful response. The caller holds the lock.
func (w *Workflow) apply(s *Screen, resp *domain.AuditResponse) {
	s.Kind = domain.Classify(resp)

	if s.Kind == domain.ContentFreeform {
		body := resp.Body
		s.Output = body
		EnableDownloads(s, nil, &body)
		s.State = domain.StateSucceeded
		return
	}

	result, err := domain.ParseStructured([]byte(resp.Body))
	if err != nil {
		w.logger.Warn("structured response could not be parsed", slog.String("error", err.Error()))
		s.Output = resp.Body
		s.State = domain.StateFailed
		return
	}

	pretty, err := result.Indented()
	if err != nil {
		pretty = []byte(resp.Body)
	}
	s.Output = string(pretty)
	s.Summary = result.Summary
	RenderViolations(&s.Violations, result)
	RenderDiagnostics(&s.Diagnostics, result)
	EnableDownloads(s, result, nil)
	EnableSpreadsheet(s, result, w.sheet)
	s.State = domain.StateSucceeded
}

// record runs the best-effort side effects of a settled run.
func (w *Workflow) record(logger *slog.Logger, req domain.AuditRequest, resp *domain.AuditResponse, entry domain.RunEntry) {
	entry.Timestamp = w.now().Format(time.RFC3339)
	entry.File = req.File.Name

	if w.git != nil && req.File.Name != "" {
		dir := filepath.Dir(req.File.Name)
		if w.git.IsGitRepo(dir) {
			if hash, err := w.git.CommitHash(dir); err == nil {
				entry.DocumentCommit = hash
			}
		}
	}

	if w.history != nil {
		if err := w.history.Save(w.stateDir, entry); err != nil {
			logger.Warn("saving run history", slog.String("error", err.Error()))
		}
	}

	if w.store != nil && entry.State == domain.StateSucceeded && resp != nil {
		stored := &domain.StoredResponse{
			RunID:    entry.RunID,
			File:     req.File.Name,
			APIBase:  w.apiBase,
			SavedAt:  entry.Timestamp,
			Response: *resp,
		}
		if err := w.store.Save(w.stateDir, stored); err != nil {
			logger.Warn("storing response", slog.String("error", err.Error()))
		}
	}
}
