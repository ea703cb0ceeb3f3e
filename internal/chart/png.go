package chart

import (
	"errors"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart"

	"renewables/internal/core"
)

var ErrNoRows = errors.New("no rows to plot")

const (
	pngBarWidth   = 30
	pngBarSpacing = 12
)

// WritePNG renders rows as a vertical bar chart image.
func WritePNG(w io.Writer, rows []core.Row, title string) error {
	if len(rows) == 0 {
		return ErrNoRows
	}

	bars := make([]gochart.Value, 0, len(rows))
	lo, hi := 0.0, 0.0
	for _, r := range rows {
		bars = append(bars, gochart.Value{Label: r.Category, Value: r.Value})
		lo = math.Min(lo, r.Value)
		hi = math.Max(hi, r.Value)
	}
	if lo == hi {
		hi = lo + 1
	}

	width := len(rows)*(pngBarWidth+pngBarSpacing) + 160
	if width < 640 {
		width = 640
	}

	bc := gochart.BarChart{
		Title:      title,
		TitleStyle: gochart.StyleShow(),
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Width:      width,
		Height:     512,
		BarWidth:   pngBarWidth,
		BarSpacing: pngBarSpacing,
		XAxis:      gochart.StyleShow(),
		YAxis: gochart.YAxis{
			Style: gochart.StyleShow(),
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}
	return bc.Render(gochart.PNG, w)
}
