package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"renewables/internal/chart"
	"renewables/internal/core"
	"renewables/internal/dataset"
	applog "renewables/internal/log"
	"renewables/internal/view"
)

const (
	formatSVG = "svg"
	formatPNG = "png"
)

type renderOptions struct {
	year   int
	out    string
	format string
}

func newRenderCommand(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the chart for one year as SVG or PNG",
		Example: "  renewablesctl render --year 2020 --out chart.svg\n" +
			"  renewablesctl render --format png > chart.png",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := opts.resolveFormat()
			if err != nil {
				return err
			}
			e, err := root.setup(cmd)
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

			sel, rows, err := loadSelection(cmd.Context(), res.Provider, opts.year)
			if err != nil {
				return err
			}

			w, closeOut, err := openOutput(cmd.OutOrStdout(), opts.out)
			if err != nil {
				return err
			}
			if err := writeChart(w, format, sel.Year, rows, chartOpts); err != nil {
				_ = closeOut()
				return err
			}
			if err := closeOut(); err != nil {
				return fmt.Errorf("write %s: %w", opts.out, err)
			}
			e.logger.Info("Chart rendered",
				applog.FieldYear, sel.Year,
				applog.FieldRows, len(rows),
				"format", format,
				"out", opts.out)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.year, "year", 0, "year to render (default: most recent)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&opts.format, "format", "", "svg or png (default: from --out extension, else svg)")

	return cmd
}

func (o *renderOptions) resolveFormat() (string, error) {
	format := strings.ToLower(o.format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(o.out)), ".")
		if format != formatPNG {
			format = formatSVG
		}
	}
	if format != formatSVG && format != formatPNG {
		return "", fmt.Errorf("unsupported format %q: must be svg or png", o.format)
	}
	return format, nil
}

// loadSelection resolves year (0 means the latest) and loads its rows. With an
// empty dataset and no explicit year it returns no rows.
func loadSelection(ctx context.Context, p dataset.Provider, year int) (core.Selection, []core.Row, error) {
	years, err := p.ListYears(ctx)
	if err != nil {
		return core.Selection{}, nil, fmt.Errorf("list years: %w", err)
	}
	sel, ok := core.NewSelection(years)
	if year != 0 {
		if !ok || year < sel.Min || year > sel.Max {
			return core.Selection{}, nil, fmt.Errorf("%w: %d", core.ErrUnknownYear, year)
		}
		sel.Year = year
	} else if !ok {
		return sel, []core.Row{}, nil
	}
	rows, err := view.Load(ctx, p, sel.Year)
	if err != nil {
		return core.Selection{}, nil, err
	}
	return sel, rows, nil
}

func openOutput(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	return bw, func() error {
		if err := bw.Flush(); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}, nil
}

func writeChart(w io.Writer, format string, year int, rows []core.Row, opts chart.Options) error {
	switch format {
	case formatPNG:
		return chart.WritePNG(w, rows, fmt.Sprintf("%s %d", opts.Title, year))
	default:
		_, err := chart.Standalone(rows, opts).WriteTo(w)
		return err
	}
}
