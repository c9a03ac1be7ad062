package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "stacaudit",
		Short:         "Audit STAC PDFs against the audit service",
		Long:          "stacaudit submits a PDF to the STAC audit service and renders its findings in the terminal, a local browser page or an MCP client.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.register(cmd)

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newUICmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	cmd.AddCommand(newDownloadCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newDebugCmd(opts))
	cmd.AddCommand(newMCPCmd(opts))
	cmd.AddCommand(newInitCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}
