package cli

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/medqc/stacaudit/internal/adapters/inbound/termui"
	"github.com/medqc/stacaudit/internal/adapters/outbound/scanner"
)

func newUICmd(opts *globalOptions) *cobra.Command {
	var (
		human  bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "ui [file.pdf]",
		Short: "Interactive terminal UI",
		Long:  "Pick a PDF, toggle human mode and format, run audits and export artifacts from the terminal.",
		Args:  cobra.MaximumNArgs(1),
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
			sink, err := a.sink(cmd.Context())
			if err != nil {
				return err
			}

			path := ""
			if len(args) > 0 {
				path = args[0]
			}

			found, err := scanner.New().Scan(a.dir, a.cfg.OutputDir)
			if err != nil {
				a.logger.Warn("looking for pdfs", slog.String("error", err.Error()))
			}
			candidates := make([]string, 0, len(found))
			for _, rel := range found {
				candidates = append(candidates, filepath.Join(a.dir, rel))
			}

			return termui.Run(cmd.Context(), termui.Options{
				Workflow:   a.workflow,
				Sink:       sink,
				Path:       path,
				Candidates: candidates,
				Human:      human,
				Format:     format,
			})
		},
	}

	cmd.Flags().BoolVar(&human, "human", false, "Start with human mode on")
	cmd.Flags().StringVar(&format, "format", "", "Initial output format (md, json, text)")

	return cmd
}
