package cli

import (
	mcpadapter "github.com/medqc/stacaudit/internal/adapters/inbound/mcp"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the stacaudit MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(opts))
	return cmd
}

func newMCPServeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start stacaudit MCP server (stdio)",
		Long:  "Start the stacaudit MCP server using stdio transport. This lets AI assistants audit PDFs and read the last result and run history.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			s := mcpadapter.NewStacAuditMCPServer(mcpadapter.Deps{
				Workflow: a.workflow,
				Store:    a.store,
				History:  a.history,
				StateDir: a.dir,
				Version:  version,
			})
			return server.ServeStdio(s)
		},
	}

	return cmd
}
