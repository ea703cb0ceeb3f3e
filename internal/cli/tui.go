package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"renewables/internal/chart"
	"renewables/internal/tui"
	"renewables/internal/view"
)

func newTUICommand(root *rootOptions) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the chart year by year in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Logging must not write over the terminal UI.
			var logOut io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				logOut = f
			}
			e, err := root.setupTo(logOut)
			if err != nil {
				return err
			}
			chartOpts, err := ChartOptions(e.cfg)
			if err != nil {
				return err
			}
			res, err := OpenBackend(cmd.Context(), e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer res.Close()

			ctrl := view.NewController(res.Provider, chart.NewSurface(), chart.DefaultMount, chartOpts, e.logger)
			return tui.New(ctrl, e.logger).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file instead of discarding them")

	return cmd
}
