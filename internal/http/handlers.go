package http

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"renewables/internal/chart"
	applog "renewables/internal/log"
)

const entryPoint = "index.html"

// handleApp serves the application. Any path that is not a file of the
// bundled application falls back to its entry point.
func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	if s.app != nil {
		s.serveBundled(w, r)
		return
	}
	s.handleIndex(w, r)
}

func (s *Server) serveBundled(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name != "" && name != entryPoint {
		if st, err := fs.Stat(s.app, name); err == nil && !st.IsDir() {
			http.ServeFileFS(w, r, s.app, name)
			return
		}
	}

	index, err := fs.ReadFile(s.app, entryPoint)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Entry point missing", applog.FieldPath, r.URL.Path, applog.FieldError, err)
		http.Error(w, "application not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(index)
}

type indexData struct {
	Title    string
	Years    []int
	Selected int
	Chart    template.HTML
	Error    string
}

// handleIndex renders the embedded page with the latest year already drawn.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := indexData{Title: s.chartOpts.Title}
	years, err := s.provider.ListYears(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Year list error", applog.FieldError, err)
		data.Error = "Data source unavailable"
	}
	data.Years = years

	// The page is served for every unknown path, so it always opens on the latest year.
	if err == nil {
		sel, rows, err := s.chartRows(r.Context(), "")
		if err != nil {
			s.logger.ErrorContext(r.Context(), "Initial chart error", applog.FieldError, err)
			data.Error = "Could not load chart data"
		} else {
			data.Selected = sel.Year
			surface := chart.NewSurface()
			chart.RenderRows(surface, chart.DefaultMount, rows, s.chartOpts)
			var buf bytes.Buffer
			_ = surface.WriteMount(&buf, chart.DefaultMount)
			data.Chart = template.HTML(buf.String())
		}
	}

	var out bytes.Buffer
	if err := s.templates.ExecuteTemplate(&out, entryPoint, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed", applog.FieldError, err, "template", entryPoint)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(out.Bytes())
}
