package cli

import (
	"github.com/spf13/cobra"

	"github.com/medqc/stacaudit/internal/adapters/inbound/web"
	"github.com/medqc/stacaudit/internal/adapters/outbound/htmlview"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the audit page in the browser",
		Long:  "Start a local web server with the upload form, output area, violations and diagnostics panels and the download buttons.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			srv := web.New(a.workflow, a.logger, htmlview.PageOptions{
				Version: version,
				Human:   a.cfg.Human,
				Format:  a.cfg.Format,
			})
			cmd.Printf("Serving on http://%s (audit service %s)\n", addr, a.cfg.APIBase)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")

	return cmd
}
