package security

import (
	"net/http"
	"strings"
)

// IsHTTPS reports whether the request reached us, or the fronting proxy, over TLS.
func IsHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// RedirectHTTPS sends plain-HTTP requests to the same host and URI over HTTPS
// with a 301. When disabled the handler is returned unchanged.
func RedirectHTTPS(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsHTTPS(r) {
				next.ServeHTTP(w, r)
				return
			}
			http.Redirect(w, r, "https://"+r.Host+r.URL.RequestURI(), http.StatusMovedPermanently)
		})
	}
}
