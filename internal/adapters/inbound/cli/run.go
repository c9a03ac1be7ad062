package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medqc/stacaudit/internal/adapters/outbound/docfile"
	"github.com/medqc/stacaudit/internal/adapters/outbound/tui"
	"github.com/medqc/stacaudit/internal/application"
	"github.com/medqc/stacaudit/internal/domain"
)

// errRunFailed makes a failed audit exit non-zero after its screen is printed.
var errRunFailed = errors.New("audit failed")

func newRunCmd(opts *globalOptions) *cobra.Command {
	var (
		human      bool
		format     string
		jsonOutput bool
		save       []string
	)

	cmd := &cobra.Command{
		Use:   "run <file.pdf>",
		Short: "Audit a PDF once and print the findings",
		Long:  "Submit a PDF to the audit service, print the interpreted response and optionally save the derived artifacts.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(save)
			if err != nil {
				return err
			}

			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			human, format, err := a.request(cmd, human, format)
			if err != nil {
				return err
			}

			doc, err := docfile.Load(args[0])
			if err != nil {
				return err
			}
			if err := docfile.RequirePDF(doc); err != nil {
				a.logger.Warn("submitting anyway", slog.String("error", err.Error()))
			}

			a.workflow.RunAudit(cmd.Context(), domain.AuditRequest{File: doc, HumanMode: human, Format: format})
			screen := a.workflow.Screen()

			out := cmd.OutOrStdout()
			if jsonOutput {
				data, err := json.MarshalIndent(screen, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding screen: %w", err)
				}
				fmt.Fprintln(out, string(data))
			} else {
				fmt.Fprint(out, tui.RenderOutput(screen))
			}

			if len(kinds) > 0 {
				sink, err := a.sink(cmd.Context())
				if err != nil {
					return err
				}
				for _, kind := range kinds {
					location, err := a.workflow.Export(cmd.Context(), kind, sink)
					if errors.Is(err, application.ErrDownloadDisabled) {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s is not available for this run\n", kind)
						continue
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Saved %s\n", location)
				}
			}

			if screen.State == domain.StateFailed {
				return errRunFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&human, "human", false, "Request human-readable output")
	cmd.Flags().StringVar(&format, "format", "", "Output format in human mode (md, json, text)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the screen state as JSON")
	cmd.Flags().StringSliceVar(&save, "save", nil, "Artifacts to save after the run (json, md, xlsx)")

	return cmd
}

// parseKinds turns --save values into artifact kinds.
func parseKinds(values []string) ([]domain.ArtifactKind, error) {
	kinds := make([]domain.ArtifactKind, 0, len(values))
	for _, v := range values {
		kind, ok := domain.ParseArtifactKind(strings.TrimSpace(v))
		if !ok {
			return nil, fmt.Errorf("unknown artifact %q (valid: json, md, xlsx)", v)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}
