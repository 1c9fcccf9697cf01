// Package http serves the JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	applog "paymonth/internal/log"
	"paymonth/internal/middleware/ratelimit"
	"paymonth/internal/middleware/security"
	"paymonth/internal/middleware/trace"
	"paymonth/internal/services"
)

// UserIDHeader names the caller. Requests without it act as the default user.
const UserIDHeader = "X-User-ID"

const maxUserIDLen = 100

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the application services the handlers call.
type Services struct {
	Transactions *services.TransactionService
	Settings     *services.SettingsService
	Periods      *services.PeriodService
	Stats        *services.StatsService
	Health       Pinger
}

type Options struct {
	DefaultUserID      string
	Location           *time.Location
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	Logger             *applog.Logger
	// Now defaults anchorDate; nil means time.Now.
	Now func() time.Time
}

type Server struct {
	http.Server
	svc      Services
	opts     Options
	limiter  *ratelimit.Limiter
	clientIP *security.ClientIPResolver
	logger   *applog.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. Call Shutdown to stop it and its background goroutines.
func NewServer(addr string, svc Services, opts Options) *Server {
	if opts.DefaultUserID == "" {
		opts.DefaultUserID = "local"
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.CORSAllowedOrigins) == 0 {
		opts.CORSAllowedOrigins = []string{"*"}
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}

	limitCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limitCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		svc:      svc,
		opts:     opts,
		limiter:  ratelimit.NewLimiter(limitCfg),
		clientIP: security.NewClientIPResolver(),
		logger:   opts.Logger.WithComponent(applog.ComponentHTTP),
	}
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(trace.RequestID)
	r.Use(applog.Middleware(s.logger))
	r.Use(applog.RequestIDMiddleware(func(r *http.Request) string { return trace.GetRequestID(r.Context()) }))
	r.Use(trace.NewMiddleware(s.logger, s.clientIP.ClientIP).Middleware)
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", UserIDHeader, trace.RequestIDHeader},
		ExposedHeaders: []string{trace.RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(s.limiter.Middleware(s.clientIP.ClientIP, s.handleRateLimited))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusNotFound, CodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", nil)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/period", s.handleGetPeriod)
		r.Get("/period/range", s.handleGetPeriodRange)

		r.With(applog.ComponentMiddleware(applog.ComponentStats)).Get("/stats", s.handleGetStats)
		r.With(applog.ComponentMiddleware(applog.ComponentStats)).Get("/stats/compare", s.handleCompareStats)

		r.Group(func(r chi.Router) {
			r.Use(applog.ComponentMiddleware(applog.ComponentTransaction))
			r.Post("/quick-input/parse", s.handleParseQuickInput)
			r.Post("/quick-input", s.handleQuickAdd)
			r.Get("/quick-input/categories", s.handleListCategories)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(applog.ComponentMiddleware(applog.ComponentTransaction))
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Get("/{id}", s.handleGetTransaction)
			r.Patch("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Get("/user/settings", s.handleGetSettings)
		r.Patch("/user/settings", s.handleUpdateSettings)
	})

	return r
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.clientIP.ClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeAPIError(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded, try again later", nil)
}

// Shutdown stops accepting requests, waits for in-flight ones and stops the
// rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.svc.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.svc.Health.Ping(ctx); err != nil {
			s.logger.ErrorContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			writeAPIError(w, http.StatusServiceUnavailable, CodeUnavailable, "database unavailable", nil)
			return
		}
	}
	writeData(w, http.StatusOK, map[string]string{"status": "ready"})
}
