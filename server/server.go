package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"airbnb-dashboard/services"
	"airbnb-dashboard/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// Config controls where the server listens and which files it reads.
type Config struct {
	Addr string
	// DataPaths are tried in order; the first that loads is served.
	DataPaths []string
}

// Server is the dashboard and JSON API over one cached dataset.
type Server struct {
	cfg      Config
	logger   *utils.Logger
	cache    *services.DatasetCache
	insights *services.InsightService
	metrics  *Metrics
	validate *validator.Validate
	tmpl     *template.Template
	router   chi.Router
}

// New builds a Server and installs its load metrics on cache.
func New(cfg Config, cache *services.DatasetCache, logger *utils.Logger) (*Server, error) {
	tmpl, err := template.New("dashboard.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("server: parse templates: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		cache:    cache,
		insights: services.NewInsightService(logger),
		metrics:  NewMetrics(),
		validate: newValidator(),
		tmpl:     tmpl,
	}

	prev := cache.OnLoad
	cache.OnLoad = func(path string, elapsed time.Duration, err error) {
		s.metrics.ObserveLoad(path, elapsed, err)
		if prev != nil {
			prev(path, elapsed, err)
		}
	}

	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(s.logger, s.metrics))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleDashboard)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/stats", s.handleStats)
		r.Get("/stats/cities", s.handleCityStats)
		r.Get("/stats/areas", s.handleAreaStats)
		r.Get("/lookups", s.handleLookups)
		r.Get("/listings", s.handleListings)
		r.Get("/metrics/guest", s.handleGuestMetrics)
		r.Get("/metrics/host", s.handleHostMetrics)
		r.Get("/export/csv", s.handleExportCSV)
		r.Get("/export/xlsx", s.handleExportXLSX)
	})

	return r
}

// ServeHTTP makes Server usable directly with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[server] Listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("[server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
