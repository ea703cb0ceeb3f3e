package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"renewables/internal/core"
	"renewables/internal/dataset/memory"
)

func sampleRecords() []core.Record {
	return []core.Record{
		{Year: 2019, Category: "Iowa", Value: 41.2},
		{Year: 2019, Category: "Texas", Value: 19.5},
		{Year: 2020, Category: "Iowa", Value: 57.1},
		{Year: 2020, Category: "Texas", Value: 20.4},
		{Year: 2020, Category: "Maine", Value: 2.1},
	}
}

// countingProvider counts calls that reach the underlying store.
type countingProvider struct {
	*memory.Store
	years   atomic.Int32
	records atomic.Int32
}

func (c *countingProvider) ListYears(ctx context.Context) ([]int, error) {
	c.years.Add(1)
	return c.Store.ListYears(ctx)
}

func (c *countingProvider) RecordsForYear(ctx context.Context, year int) ([]core.Record, error) {
	c.records.Add(1)
	return c.Store.RecordsForYear(ctx, year)
}

// brokenRecords lists years but fails every record fetch.
type brokenRecords struct{ *memory.Store }

func (brokenRecords) RecordsForYear(context.Context, int) ([]core.Record, error) {
	return nil, errors.New("upstream down")
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Provider == nil {
		opts.Provider = memory.New(sampleRecords())
	}
	srv := NewServer(opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(srv *Server, method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestIndexAndHealth(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `<figure id="bar">`) {
		t.Fatalf("index body missing mount point")
	}
	if !strings.Contains(body, `<option value="2020" selected>`) {
		t.Errorf("latest year not selected")
	}
	if n := strings.Count(body, "<rect "); n != 3 {
		t.Errorf("initial chart has %d bars, want 3", n)
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(srv, http.MethodGet, path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestUnknownPathFallsBackToIndex(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/some/client/route")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `<figure id="bar">`) {
		t.Fatalf("fallback did not serve the entry point")
	}
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/static/style.css")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if cc := rr.Header().Get("Cache-Control"); !strings.Contains(cc, "max-age=3600") {
		t.Errorf("Cache-Control = %q", cc)
	}
}

func TestBundledStaticDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<div id=app></div>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, Options{StaticDir: dir})

	rr := do(srv, http.MethodGet, "/main.js")
	if rr.Code != http.StatusOK || rr.Body.String() != "console.log(1)" {
		t.Fatalf("asset: status=%d body=%q", rr.Code, rr.Body.String())
	}
	for _, path := range []string{"/", "/index.html", "/deep/link"} {
		rr := do(srv, http.MethodGet, path)
		if rr.Code != http.StatusOK || rr.Body.String() != "<div id=app></div>" {
			t.Errorf("%s: status=%d body=%q", path, rr.Code, rr.Body.String())
		}
	}
}

func TestDistinctYears(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, pathDistinctYears)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if got, want := strings.TrimSpace(rr.Body.String()), `{"data":["2019","2020"]}`; got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestData(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, pathData+"?year=2019")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	want := `{"data":[{"year":2019,"state":"Iowa","renewables":41.2},{"year":2019,"state":"Texas","renewables":19.5}]}`
	if got := strings.TrimSpace(rr.Body.String()); got != want {
		t.Errorf("body = %s\nwant   %s", got, want)
	}

	rr = do(srv, http.MethodGet, pathData+"?year=2031")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != `{"data":[]}` {
		t.Errorf("empty year: status=%d body=%s", rr.Code, rr.Body.String())
	}

	for _, target := range []string{pathData, pathData + "?year=abc", pathData + "?year=0"} {
		rr := do(srv, http.MethodGet, target)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status=%d, want 400", target, rr.Code)
		}
	}
}

func TestDataIsCachedUntilPurge(t *testing.T) {
	p := &countingProvider{Store: memory.New(sampleRecords())}
	srv := newTestServer(t, Options{Provider: p})

	for i := 0; i < 3; i++ {
		if rr := do(srv, http.MethodGet, pathData+"?year=2019"); rr.Code != http.StatusOK {
			t.Fatalf("status=%d", rr.Code)
		}
	}
	if got := p.records.Load(); got != 1 {
		t.Fatalf("provider called %d times, want 1", got)
	}

	if purged := srv.Purge(); purged != 1 {
		t.Errorf("purged %d entries, want 1", purged)
	}
	do(srv, http.MethodGet, pathData+"?year=2019")
	if got := p.records.Load(); got != 2 {
		t.Errorf("provider called %d times after purge, want 2", got)
	}
}

func TestChartSVG(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/chart.svg?year=2019")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rr.Body.String()
	if !strings.HasPrefix(body, "<svg") {
		t.Fatalf("body does not start with <svg: %.40s", body)
	}
	if n := strings.Count(body, "<rect "); n != 2 {
		t.Errorf("bars = %d, want 2", n)
	}

	// default is the latest year
	rr = do(srv, http.MethodGet, "/chart.svg")
	if n := strings.Count(rr.Body.String(), "<rect "); n != 3 {
		t.Errorf("default year bars = %d, want 3", n)
	}

	if rr := do(srv, http.MethodGet, "/chart.svg?year=1990"); rr.Code != http.StatusNotFound {
		t.Errorf("out of range: status=%d, want 404", rr.Code)
	}
	if rr := do(srv, http.MethodGet, "/chart.svg?year=x"); rr.Code != http.StatusBadRequest {
		t.Errorf("invalid: status=%d, want 400", rr.Code)
	}
}

func TestChartSVGWithoutData(t *testing.T) {
	srv := newTestServer(t, Options{Provider: memory.New(nil)})

	rr := do(srv, http.MethodGet, "/chart.svg")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "<rect ") {
		t.Errorf("empty dataset drew bars")
	}

	if rr := do(srv, http.MethodGet, "/chart.png"); rr.Code != http.StatusNotFound {
		t.Errorf("png without rows: status=%d, want 404", rr.Code)
	}
}

func TestChartPNG(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/chart.png?year=2020")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(rr.Body.String(), "\x89PNG") {
		t.Errorf("body is not a PNG")
	}
}

func TestChartFragment(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/ui/chart?year=2019")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.HasPrefix(body, `<figure id="bar">`) || strings.Count(body, "<svg") != 1 {
		t.Errorf("unexpected fragment: %.60s", body)
	}
	if trig := rr.Header().Get("HX-Trigger"); !strings.Contains(trig, `"year":2019`) {
		t.Errorf("HX-Trigger = %q", trig)
	}
}

func TestChartFragmentFailureKeepsPage(t *testing.T) {
	srv := newTestServer(t, Options{Provider: brokenRecords{memory.New(sampleRecords())}})

	rr := do(srv, http.MethodGet, "/ui/chart?year=2019")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status=%d, want 502", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "chart:failed") {
		t.Errorf("HX-Trigger = %q", rr.Header().Get("HX-Trigger"))
	}
	if strings.Contains(rr.Body.String(), "upstream down") {
		t.Errorf("upstream error leaked to client")
	}
}

func TestForceHTTPS(t *testing.T) {
	srv := newTestServer(t, Options{ForceHTTPS: true})

	req := httptest.NewRequest(http.MethodGet, "http://example.com/horizontal-bar/data?year=2019", nil)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMovedPermanently {
		t.Fatalf("status=%d, want 301", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "https://example.com/horizontal-bar/data?year=2019" {
		t.Errorf("Location = %q", loc)
	}

	req = httptest.NewRequest(http.MethodGet, "http://example.com/healthz", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("forwarded https: status=%d", rr.Code)
	}
	if rr.Header().Get("Strict-Transport-Security") == "" {
		t.Errorf("HSTS missing over https")
	}
}

func TestSecurityAndTraceHeaders(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/healthz")
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("X-Content-Type-Options missing")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Errorf("X-Request-ID missing")
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Errorf("HSTS set over plain http")
	}
}

func TestShutdownTwice(t *testing.T) {
	srv := NewServer(Options{Provider: memory.New(nil)})
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("first shutdown: %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}
