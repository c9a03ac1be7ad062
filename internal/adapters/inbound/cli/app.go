package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/medqc/stacaudit/internal/adapters/outbound/auditapi"
	"github.com/medqc/stacaudit/internal/adapters/outbound/cache"
	"github.com/medqc/stacaudit/internal/adapters/outbound/config"
	"github.com/medqc/stacaudit/internal/adapters/outbound/export"
	"github.com/medqc/stacaudit/internal/adapters/outbound/gitinfo"
	"github.com/medqc/stacaudit/internal/adapters/outbound/history"
	"github.com/medqc/stacaudit/internal/adapters/outbound/s3sink"
	"github.com/medqc/stacaudit/internal/adapters/outbound/sheet"
	"github.com/medqc/stacaudit/internal/adapters/outbound/telemetry"
	"github.com/medqc/stacaudit/internal/application"
	"github.com/medqc/stacaudit/internal/domain"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	dir     string
	apiBase string
	verbose bool
	logJSON bool
	trace   bool
}

func (o *globalOptions) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.dir, "dir", ".", "Directory holding .stacaudit.yaml and the .stacaudit state")
	f.StringVar(&o.apiBase, "api-base", "", "Audit service base URL (overrides config)")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Enable debug logging")
	f.BoolVar(&o.logJSON, "log-json", false, "Log as JSON")
	f.BoolVar(&o.trace, "trace", false, "Print OpenTelemetry spans to stderr")
}

// app holds everything a command needs to drive audits.
type app struct {
	cfg      domain.ClientConfig
	dir      string
	logger   *slog.Logger
	client   *auditapi.Client
	store    *cache.Store
	history  *history.FileHistory
	workflow *application.Workflow
	shutdown func(context.Context) error
}

// Close flushes telemetry.
func (a *app) Close(ctx context.Context) {
	if a.shutdown == nil {
		return
	}
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("flushing traces", slog.String("error", err.Error()))
	}
}

// newApp loads configuration and wires the adapters for one command.
func (o *globalOptions) newApp(cmd *cobra.Command) (*app, error) {
	// .env is optional.
	_ = godotenv.Load()

	logger := newLogger(cmd.ErrOrStderr(), o.verbose, o.logJSON)

	cfg, err := config.New().Load(o.dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.apiBase != "" {
		override := cfg
		override.APIBase = o.apiBase
		if err := override.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --api-base: %w", err)
		}
		cfg = override
	}

	a := &app{cfg: cfg, dir: o.dir, logger: logger}
	if o.trace || cfg.Trace {
		shutdown, err := telemetry.InitTracer("stacaudit", version, cmd.ErrOrStderr(), logger)
		if err != nil {
			return nil, err
		}
		a.shutdown = shutdown
	}

	a.client = auditapi.New(cfg.APIBase, auditapi.WithLogger(logger))
	a.store = cache.New()
	a.history = history.New()
	a.workflow = application.NewWorkflow(a.client,
		application.WithHistory(a.history),
		application.WithResponseStore(a.store),
		application.WithGitInfo(gitinfo.New()),
		application.WithSpreadsheet(sheet.New()),
		application.WithLogger(logger),
		application.WithStateDir(o.dir),
		application.WithAPIBase(cfg.APIBase),
		application.WithTimeout(cfg.Timeout),
	)
	return a, nil
}

// sink returns the configured artifact destination: S3 when a bucket is set,
// the output directory otherwise.
func (a *app) sink(ctx context.Context) (domain.ArtifactSink, error) {
	if !a.cfg.S3.Enabled() {
		return export.New(a.cfg.OutputDir), nil
	}
	s, err := s3sink.New(ctx, a.cfg.S3, s3sink.Credentials{
		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	})
	if err != nil {
		return nil, fmt.Errorf("configuring s3: %w", err)
	}
	return s, nil
}

// request resolves the human/format flags against the configuration.
func (a *app) request(cmd *cobra.Command, human bool, format string) (bool, string, error) {
	if !cmd.Flags().Changed("human") {
		human = a.cfg.Human
	}
	if !cmd.Flags().Changed("format") {
		format = a.cfg.Format
	}
	if format != "" && !domain.IsKnownFormat(format) {
		return false, "", fmt.Errorf("unknown format %q (valid: md, json, text)", format)
	}
	return human, format, nil
}

func newLogger(w io.Writer, verbose, asJSON bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
