package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/medqc/stacaudit/internal/adapters/outbound/config"
	"github.com/medqc/stacaudit/internal/domain"
)

func newInitCmd(opts *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Generate a .stacaudit.yaml configuration file",
		Long:  "Create a commented .stacaudit.yaml pointing at the audit service.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			dest := filepath.Join(absPath, config.FileName)

			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
				}
			}

			apiBase := opts.apiBase
			if apiBase == "" {
				apiBase = domain.DefaultAPIBase
			}
			if err := (domain.ClientConfig{APIBase: apiBase}).Validate(); err != nil {
				return fmt.Errorf("invalid --api-base: %w", err)
			}

			if err := os.WriteFile(dest, []byte(config.RenderTemplate(apiBase)), 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .stacaudit.yaml")

	return cmd
}
