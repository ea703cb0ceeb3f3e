package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"renewables/internal/chart"
	"renewables/internal/core"
	applog "renewables/internal/log"
	"renewables/internal/view"
)

// chartRows resolves the requested year and loads its aggregated rows.
// With no data at all it returns an empty selection and no rows.
func (s *Server) chartRows(ctx context.Context, rawYear string) (core.Selection, []core.Row, error) {
	sel, ok, err := s.provider.selection(ctx, rawYear)
	if err != nil {
		return core.Selection{}, nil, err
	}
	if !ok {
		return sel, []core.Row{}, nil
	}
	rows, err := view.Load(ctx, s.provider, sel.Year)
	if err != nil {
		return core.Selection{}, nil, err
	}
	return sel, rows, nil
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	sel, rows, err := s.chartRows(r.Context(), r.URL.Query().Get("year"))
	if err != nil {
		s.fail(w, r, applog.OpRender, err)
		return
	}
	svg := chart.Standalone(rows, s.chartOpts)

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := svg.WriteTo(w); err != nil {
		s.logger.WarnContext(r.Context(), "Write SVG failed", applog.FieldYear, sel.Year, applog.FieldError, err)
	}
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	sel, rows, err := s.chartRows(r.Context(), r.URL.Query().Get("year"))
	if err != nil {
		s.fail(w, r, applog.OpRender, err)
		return
	}

	var buf bytes.Buffer
	title := fmt.Sprintf("%s %d", s.chartOpts.Title, sel.Year)
	if err := chart.WritePNG(&buf, rows, title); err != nil {
		if errors.Is(err, chart.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
			return
		}
		s.logger.ErrorContext(r.Context(), "PNG render failed", applog.FieldYear, sel.Year, applog.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: http.StatusText(http.StatusInternalServerError)})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(buf.Bytes())
}

// handleChartFragment renders the figure the page's year selector swaps in.
// Failures answer with a non-2xx status so the previous chart stays on screen.
func (s *Server) handleChartFragment(w http.ResponseWriter, r *http.Request) {
	sel, rows, err := s.chartRows(r.Context(), r.URL.Query().Get("year"))
	if err != nil {
		status := statusFor(err)
		if status >= 500 {
			s.logger.ErrorContext(r.Context(), "Chart fragment failed", applog.FieldError, err)
		}
		year, _ := strconv.Atoi(r.URL.Query().Get("year"))
		ErrorResponse(status, "Could not load the selected year").
			TriggerChartFailed(year, http.StatusText(status)).
			Write(w)
		return
	}

	surface := chart.NewSurface()
	chart.RenderRows(surface, chart.DefaultMount, rows, s.chartOpts)
	var buf bytes.Buffer
	if err := surface.WriteMount(&buf, chart.DefaultMount); err != nil {
		ErrorResponse(http.StatusInternalServerError, "Could not render the chart").Write(w)
		return
	}
	s.logger.DebugContext(r.Context(), "Chart fragment rendered",
		applog.FieldYear, sel.Year,
		applog.FieldRows, len(rows))

	NewHTMXResponse().
		BodyHTML(buf.Bytes()).
		TriggerChartRendered(sel.Year, len(rows)).
		Write(w)
}
