package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/medqc/stacaudit/internal/adapters/outbound/export"
	"github.com/medqc/stacaudit/internal/application"
)

func newDownloadCmd(opts *globalOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "download <json|md|xlsx>...",
		Short: "Save artifacts of the last successful run",
		Long:  "Rebuild audit.json, audit.md or audit.xlsx from the last stored response without contacting the audit service.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(args)
			if err != nil {
				return err
			}

			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			stored, err := a.store.Load(a.dir)
			if err != nil {
				return err
			}
			if stored.IsStale(a.cfg.APIBase) {
				a.logger.Warn("stored result came from another service",
					slog.String("stored", stored.APIBase),
					slog.String("configured", a.cfg.APIBase),
				)
			}
			a.workflow.Replay(cmd.Context(), stored.Response)

			sink, err := a.sink(cmd.Context())
			if err != nil {
				return err
			}
			if outDir != "" {
				sink = export.New(outDir)
			}

			for _, kind := range kinds {
				location, err := a.workflow.Export(cmd.Context(), kind, sink)
				if errors.Is(err, application.ErrDownloadDisabled) {
					return fmt.Errorf("%s is not available for the last run", kind)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", location)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Write to this directory instead of the configured destination")

	return cmd
}
