package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/medqc/stacaudit/internal/adapters/inbound/watch"
	"github.com/medqc/stacaudit/internal/adapters/outbound/docfile"
	"github.com/medqc/stacaudit/internal/adapters/outbound/tui"
	"github.com/medqc/stacaudit/internal/domain"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var (
		human    bool
		format   string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <file.pdf>",
		Short: "Re-run the audit whenever the PDF changes",
		Long:  "Audit the PDF once, then again after every change on disk until interrupted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			human, format, err := a.request(cmd, human, format)
			if err != nil {
				return err
			}

			path := args[0]
			out := cmd.OutOrStdout()
			audit := func(ctx context.Context) {
				doc, err := docfile.Load(path)
				if err != nil {
					a.logger.Warn("skipping run", slog.String("error", err.Error()))
					return
				}
				a.workflow.RunAudit(ctx, domain.AuditRequest{File: doc, HumanMode: human, Format: format})
				fmt.Fprint(out, tui.RenderOutput(a.workflow.Screen()))
			}

			audit(cmd.Context())
			return watch.New(path, debounce, a.logger).Run(cmd.Context(), audit)
		},
	}

	cmd.Flags().BoolVar(&human, "human", false, "Request human-readable output")
	cmd.Flags().StringVar(&format, "format", "", "Output format in human mode (md, json, text)")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-running")

	return cmd
}
