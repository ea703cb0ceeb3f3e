package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"renewables/internal/core"
	applog "renewables/internal/log"
	"renewables/internal/middleware/trace"
)

// parseYear validates a year query value.
func parseYear(raw string) (int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidYear, raw)
	}
	if y < 1 || y > 9999 {
		return 0, fmt.Errorf("%w: %d", core.ErrInvalidYear, y)
	}
	return y, nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidYear):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnknownYear):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// fail logs err and answers with the status it maps to. Upstream details stay
// in the log.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= 500 {
		fields := applog.NewFields().WithRequestID(trace.GetRequestID(r.Context()))
		fields[applog.FieldPath] = r.URL.Path
		applog.NewStructuredLogger(s.logger).LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, op, fields)
		msg = http.StatusText(status)
	} else {
		s.logger.DebugContext(r.Context(), "Request rejected",
			applog.FieldOperation, op,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
	}
	writeJSON(w, status, errorBody{Error: msg})
}
