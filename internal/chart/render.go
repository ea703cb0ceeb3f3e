package chart

import (
	"fmt"
	"math"

	"renewables/internal/core"
)

const DefaultMount = "bar"

// Options controls the chart geometry and colours.
type Options struct {
	Width             float64   `yaml:"width"`
	MarginTop         float64   `yaml:"margin_top"`
	MarginRight       float64   `yaml:"margin_right"`
	MarginBottom      float64   `yaml:"margin_bottom"`
	MarginLeft        float64   `yaml:"margin_left"`
	BandHeight        float64   `yaml:"band_height"`
	BandPadding       float64   `yaml:"band_padding"`
	HeightPadding     float64   `yaml:"height_padding"`
	Domain            []float64 `yaml:"domain,flow"`
	Color             string    `yaml:"color"`
	LabelColor        string    `yaml:"label_color"`
	Title             string    `yaml:"title"`
	ShortBarThreshold float64   `yaml:"short_bar_threshold"`
	FontSize          float64   `yaml:"font_size"`
	FontFamily        string    `yaml:"font_family"`
}

func DefaultOptions() Options {
	return Options{
		Width:             640,
		MarginTop:         30,
		MarginRight:       0,
		MarginBottom:      10,
		MarginLeft:        30,
		BandHeight:        25,
		BandPadding:       0.2,
		HeightPadding:     0.1,
		Color:             "steelblue",
		LabelColor:        "white",
		Title:             "Sum(Renewables)",
		ShortBarThreshold: 20,
		FontSize:          10,
		FontFamily:        "sans-serif",
	}
}

// Height is the full chart height for n categories.
func (o Options) Height(n int) float64 {
	return math.Ceil((float64(n)+o.HeightPadding)*o.BandHeight) + o.MarginTop + o.MarginBottom
}

func (o Options) valueDomain(values []float64) [2]float64 {
	if len(o.Domain) == 2 && o.Domain[0] != o.Domain[1] {
		return [2]float64{o.Domain[0], o.Domain[1]}
	}
	lo, hi := 0.0, 0.0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return [2]float64{0, 1}
	}
	return [2]float64{lo, hi}
}

// Render draws a horizontal bar chart of rows into the mount point and returns
// the <svg> root. Any chart previously drawn there is removed.
func Render[T any](s *Surface, mount string, rows []T, value func(T) float64, category func(T) string, opts Options) *Element {
	values := make([]float64, len(rows))
	categories := make([]string, len(rows))
	for i, r := range rows {
		values[i] = value(r)
		categories[i] = category(r)
	}

	y := NewBand(categories, [2]float64{}, opts.BandPadding)
	height := opts.Height(len(y.Domain()))
	y = NewBand(categories, [2]float64{opts.MarginTop, height - opts.MarginBottom}, opts.BandPadding)
	x := NewLinear(opts.valueDomain(values), [2]float64{opts.MarginLeft, opts.Width - opts.MarginRight})
	tickCount := int(opts.Width / 80)
	format := x.TickFormat(100)

	svg := NewElement("svg").
		Attr("xmlns", "http://www.w3.org/2000/svg").
		Attr("width", opts.Width).
		Attr("height", height).
		Attr("viewBox", fmt.Sprintf("0 0 %s %s", formatNumber(opts.Width), formatNumber(height))).
		Attr("style", "max-width: 100%; height: auto; height: intrinsic;")

	drawTopAxis(svg, x, tickCount, height, opts)

	bars := svg.Append("g").Attr("class", "bars").Attr("fill", opts.Color)
	for i := range rows {
		top, ok := y.Map(categories[i])
		if !ok {
			continue
		}
		x0, x1 := x.Map(0), x.Map(values[i])
		bars.Append("rect").
			Attr("x", math.Min(x0, x1)).
			Attr("y", top).
			Attr("width", math.Abs(x1-x0)).
			Attr("height", y.Bandwidth()).
			Append("title").SetText(fmt.Sprintf("%s\n%s", categories[i], format(values[i])))
	}

	labels := svg.Append("g").
		Attr("class", "labels").
		Attr("fill", opts.LabelColor).
		Attr("text-anchor", "end").
		Attr("font-family", opts.FontFamily).
		Attr("font-size", opts.FontSize)
	for i := range rows {
		top, ok := y.Map(categories[i])
		if !ok {
			continue
		}
		t := labels.Append("text").
			Attr("x", x.Map(values[i])).
			Attr("y", top+y.Bandwidth()/2).
			Attr("dy", "0.35em").
			Attr("dx", -4).
			SetText(format(values[i]))
		if x.Map(values[i])-x.Map(0) < opts.ShortBarThreshold {
			t.Attr("fill", "currentColor").
				Attr("dx", 4).
				Attr("text-anchor", "start")
		}
	}

	drawLeftAxis(svg, y, height, opts)

	s.Replace(mount, svg)
	return svg
}

// RenderRows draws aggregated rows.
func RenderRows(s *Surface, mount string, rows []core.Row, opts Options) *Element {
	return Render(s, mount, rows,
		func(r core.Row) float64 { return r.Value },
		func(r core.Row) string { return r.Category },
		opts)
}

// Standalone renders rows on a throwaway surface.
func Standalone(rows []core.Row, opts Options) *Element {
	return RenderRows(NewSurface(), DefaultMount, rows, opts)
}

func drawTopAxis(svg *Element, x Linear, count int, height float64, opts Options) {
	g := svg.Append("g").
		Attr("class", "x-axis").
		Attr("transform", fmt.Sprintf("translate(0,%s)", formatNumber(opts.MarginTop))).
		Attr("fill", "none").
		Attr("font-size", opts.FontSize).
		Attr("font-family", opts.FontFamily).
		Attr("text-anchor", "middle")

	format := x.TickFormat(count)
	for _, v := range x.Ticks(count) {
		tick := g.Append("g").
			Attr("class", "tick").
			Attr("opacity", 1).
			Attr("transform", fmt.Sprintf("translate(%s,0)", formatNumber(x.Map(v))))
		tick.Append("line").Attr("stroke", "currentColor").Attr("y2", -6)
		tick.Append("line").
			Attr("class", "grid").
			Attr("stroke", "currentColor").
			Attr("y2", height-opts.MarginTop-opts.MarginBottom).
			Attr("stroke-opacity", 0.1)
		tick.Append("text").
			Attr("fill", "currentColor").
			Attr("y", -9).
			Attr("dy", "0em").
			SetText(format(v))
	}

	g.Append("text").
		Attr("class", "title").
		Attr("x", opts.Width-opts.MarginRight).
		Attr("y", -22).
		Attr("fill", "currentColor").
		Attr("text-anchor", "end").
		SetText(opts.Title)
}

func drawLeftAxis(svg *Element, y Band, height float64, opts Options) {
	g := svg.Append("g").
		Attr("class", "y-axis").
		Attr("transform", fmt.Sprintf("translate(%s,0)", formatNumber(opts.MarginLeft))).
		Attr("fill", "none").
		Attr("font-size", opts.FontSize).
		Attr("font-family", opts.FontFamily).
		Attr("text-anchor", "end")

	// outer tick size 0: the domain path is a plain vertical line
	g.Append("path").
		Attr("class", "domain").
		Attr("stroke", "currentColor").
		Attr("d", fmt.Sprintf("M0,%sV%s", formatNumber(opts.MarginTop), formatNumber(height-opts.MarginBottom)))

	for _, c := range y.Domain() {
		top, _ := y.Map(c)
		tick := g.Append("g").
			Attr("class", "tick").
			Attr("opacity", 1).
			Attr("transform", fmt.Sprintf("translate(0,%s)", formatNumber(top+y.Bandwidth()/2)))
		tick.Append("line").Attr("stroke", "currentColor").Attr("x2", -6)
		tick.Append("text").
			Attr("fill", "currentColor").
			Attr("x", -9).
			Attr("dy", "0.32em").
			SetText(c)
	}
}
