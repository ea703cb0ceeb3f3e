package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newYearsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "List the years the data backend has records for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := root.setup(cmd)
			if err != nil {
				return err
			}
			res, err := OpenBackend(cmd.Context(), e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer res.Close()

			years, err := res.Provider.ListYears(cmd.Context())
			if err != nil {
				return fmt.Errorf("list years: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, y := range years {
				fmt.Fprintln(out, y)
			}
			return nil
		},
	}
}
