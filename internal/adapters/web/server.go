// Package web serves the dashboard over HTTP, one session per browser cookie.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bnema/msgdash/internal/application"
	"github.com/bnema/msgdash/internal/domain"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// DashboardService is the slice of application.Service the handlers use.
type DashboardService interface {
	Reload(ctx context.Context, cmd application.ReloadCommand) (application.ReloadResult, error)
	Dashboard(ctx context.Context, query application.DashboardQuery) (application.Dashboard, error)
	EndSession(ctx context.Context, id domain.SessionID) error
}

var _ DashboardService = (*application.Service)(nil)

const DefaultListen = "127.0.0.1:8501"

type Config struct {
	Listen string

	// Credentials fill in whatever a reload request leaves out.
	Credentials   domain.Credentials
	DefaultWindow time.Duration

	RequestsPerSecond float64
	Burst             int
	SecureCookie      bool

	Now func() time.Time
}

type Server struct {
	cfg         Config
	service     DashboardService
	logger      *slog.Logger
	router      chi.Router
	server      *http.Server
	rateLimiter *RateLimiter
}

func NewServer(cfg Config, service DashboardService, logger *slog.Logger) *Server {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.DefaultWindow <= 0 {
		cfg.DefaultWindow = domain.DefaultWindow
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:     cfg,
		service: service,
		logger:  logger,
	}
	s.router = s.setupRouter()
	s.server = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      150 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(s.loggerMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(120 * time.Second))

	s.rateLimiter = NewRateLimiter(s.cfg.RequestsPerSecond, s.cfg.Burst)
	r.Use(RateLimitMiddleware(s.rateLimiter))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/reload", s.handleReload)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/export.csv", s.handleExport)
		r.Delete("/session", s.handleEndSession)
	})

	return r
}

// Start listens until Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting dashboard server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down dashboard server")
	return s.server.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
