package http

import (
	"fmt"
	"net/http"
	"strconv"

	"renewables/internal/core"
	"renewables/internal/dataset/remote"
	applog "renewables/internal/log"
)

// handleDistinctYears answers with years as strings, the shape the remote
// provider consumes.
func (s *Server) handleDistinctYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.provider.ListYears(r.Context())
	if err != nil {
		s.fail(w, r, applog.OpList, err)
		return
	}
	out := make([]string, 0, len(years))
	for _, y := range years {
		out = append(out, strconv.Itoa(y))
	}
	writeJSON(w, http.StatusOK, remote.ListResponse[string]{Data: out})
}

// handleData answers with the raw records of one year.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		s.fail(w, r, applog.OpLoad, fmt.Errorf("%w: missing year", core.ErrInvalidYear))
		return
	}
	year, err := parseYear(raw)
	if err != nil {
		s.fail(w, r, applog.OpLoad, err)
		return
	}
	records, err := s.provider.RecordsForYear(r.Context(), year)
	if err != nil {
		s.fail(w, r, applog.OpLoad, err)
		return
	}
	out := make([]remote.Item, 0, len(records))
	for _, rec := range records {
		out = append(out, remote.Item{Year: rec.Year, State: rec.Category, Renewables: rec.Value})
	}
	writeJSON(w, http.StatusOK, remote.ListResponse[remote.Item]{Data: out})
}
