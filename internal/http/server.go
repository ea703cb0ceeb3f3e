package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"sync"
	"time"

	"renewables/internal/cache"
	"renewables/internal/chart"
	"renewables/internal/core"
	"renewables/internal/dataset"
	applog "renewables/internal/log"
	"renewables/internal/middleware/ratelimit"
	"renewables/internal/middleware/security"
	"renewables/internal/middleware/trace"
	appweb "renewables/web"
)

const (
	pathDistinctYears = "/horizontal-bar/distinct-years"
	pathData          = "/horizontal-bar/data"

	defaultCacheSize = 64
	defaultCacheTTL  = 5 * time.Minute
	cacheSweepEvery  = 10 * time.Minute
)

// Options configures a Server. Provider is required; zero values elsewhere
// fall back to defaults.
type Options struct {
	Addr       string
	Provider   dataset.Provider
	Chart      chart.Options
	StaticDir  string // bundled application served instead of the embedded UI
	ForceHTTPS bool
	CacheSize  int
	CacheTTL   time.Duration
	RateLimit  ratelimit.Config
	Logger     *applog.Logger

	// TrustedProxies extends the proxies whose X-Forwarded-For is honoured.
	TrustedProxies []string
}

type Server struct {
	http.Server
	provider  *cachedProvider
	templates *template.Template
	app       fs.FS
	chartOpts chart.Options
	logger    *applog.Logger

	caches   *cache.Manager
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.Chart.Width == 0 {
		opts.Chart = chart.DefaultOptions()
	}

	years := cache.NewLRUCache[[]int](1, opts.CacheTTL)
	records := cache.NewLRUCache[[]core.Record](opts.CacheSize, opts.CacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(years)
	caches.Register(records)

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		provider: &cachedProvider{
			provider: opts.Provider,
			years:    cache.NewLoader[[]int](years),
			records:  cache.NewLoader[[]core.Record](records),
		},
		chartOpts: opts.Chart,
		logger:    logger,
		caches:    caches,
		limiter:   ratelimit.NewLimiter(opts.RateLimit),
		detector:  security.NewDetector(),
	}
	caches.StartCleanup(cacheSweepEvery)

	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	if opts.StaticDir != "" {
		if st, err := os.Stat(opts.StaticDir); err == nil && st.IsDir() {
			s.app = os.DirFS(opts.StaticDir)
		} else {
			logger.Warn("Static dir not usable, serving embedded UI", "static_dir", opts.StaticDir, applog.FieldError, err)
		}
	}

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	api := s.limiter.Middleware(s.detector.ExtractClientIP, nil)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET "+pathDistinctYears, api(http.HandlerFunc(s.handleDistinctYears)))
	mux.Handle("GET "+pathData, api(http.HandlerFunc(s.handleData)))
	mux.Handle("GET /chart.svg", api(http.HandlerFunc(s.handleChartSVG)))
	mux.Handle("GET /chart.png", api(http.HandlerFunc(s.handleChartPNG)))
	mux.Handle("GET /ui/chart", api(http.HandlerFunc(s.handleChartFragment)))
	mux.HandleFunc("GET /", s.handleApp)

	var h http.Handler = mux
	h = s.withDetection(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = trace.NewMiddleware(s.detector.ExtractClientIP, logger).Middleware(h)
	h = security.RedirectHTTPS(opts.ForceHTTPS)(h)
	s.Handler = h

	return s
}

// withDetection logs requests that look like scans. They are still served.
func (s *Server) withDetection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request",
				applog.FieldComponent, applog.ComponentSecurity,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

// Purge drops every cached year list and record set. It satisfies
// worker.Purger so dataset-updated events invalidate the API.
func (s *Server) Purge() int {
	return s.caches.Purge()
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady checks that the provider answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := s.provider.ListYears(ctx); err != nil {
		s.logger.WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
