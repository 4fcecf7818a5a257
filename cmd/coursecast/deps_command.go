package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"coursecast/internal/deps"
)

func newDepsCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check availability of external rendering tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				detail := status.Detail
				if status.Available {
					detail = status.Description
				}
				rows = append(rows, []string{
					status.Name,
					yesNo(status.Available),
					yesNo(status.Optional),
					detail,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Tool", "Available", "Optional", "Detail"},
				rows,
			))
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required tools: %v", missing)
			}
			fmt.Fprintln(out, "All absent tools are optional; rendering degrades through the built-in fallbacks.")
			return nil
		},
	}
}
