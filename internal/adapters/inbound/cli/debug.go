package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medqc/stacaudit/internal/adapters/outbound/auditapi"
)

func newDebugCmd(opts *globalOptions) *cobra.Command {
	names := make([]string, 0, len(auditapi.DebugPaths))
	for name := range auditapi.DebugPaths {
		names = append(names, name)
	}
	sort.Strings(names)

	cmd := &cobra.Command{
		Use:       "debug <" + strings.Join(names, "|") + ">",
		Short:     "Query a diagnostic endpoint of the audit service",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, ok := auditapi.DebugPaths[args[0]]
			if !ok {
				return fmt.Errorf("unknown endpoint %q (valid: %s)", args[0], strings.Join(names, ", "))
			}

			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			resp, err := a.client.Debug(cmd.Context(), path)
			if err != nil {
				return err
			}
			if !resp.OK() {
				return fmt.Errorf("%s: %s", args[0], resp.ErrorMessage())
			}

			var pretty bytes.Buffer
			if json.Indent(&pretty, []byte(resp.Body), "", "  ") == nil {
				fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Body)
			return nil
		},
	}

	return cmd
}
