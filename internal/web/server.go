// Package web provides the JSON HTTP API for buyer lead management.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/leads/internal/core"
	"github.com/JonMunkholm/leads/internal/identity"
	"github.com/JonMunkholm/leads/internal/metrics"
	"github.com/JonMunkholm/leads/internal/ratelimit"
	"github.com/JonMunkholm/leads/internal/web/middleware"
)

// ExportArchiver stores an export and returns a download URL for it.
type ExportArchiver interface {
	Key() string
	Archive(ctx context.Context, key string, data []byte) (string, error)
}

// Config holds the HTTP-level settings of a Server.
type Config struct {
	RequestTimeout time.Duration
	ImportTimeout  time.Duration
	MaxImportBytes int64

	CookieName   string
	CookieSecure bool

	TrustedProxies []string
	MetricsPath    string // empty disables /metrics
}

// Deps are the collaborators a Server routes to. Service and Identity are
// required; the rest are optional.
type Deps struct {
	Service  *core.Service
	Identity identity.Provider
	Limiter  *ratelimit.FixedWindow
	Metrics  *metrics.Metrics
	Archiver ExportArchiver
}

// Server is the HTTP server for the lead API.
type Server struct {
	cfg      Config
	service  *core.Service
	identity identity.Provider
	limiter  *ratelimit.FixedWindow
	metrics  *metrics.Metrics
	archiver ExportArchiver
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg Config, deps Deps) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.ImportTimeout <= 0 {
		cfg.ImportTimeout = core.DefaultImportTimeout
	}
	if cfg.MaxImportBytes <= 0 {
		cfg.MaxImportBytes = 1 << 20
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "leads_session"
	}

	s := &Server{
		cfg:      cfg,
		service:  deps.Service,
		identity: deps.Identity,
		limiter:  deps.Limiter,
		metrics:  deps.Metrics,
		archiver: deps.Archiver,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	var obs middleware.RequestObserver
	if s.metrics != nil {
		obs = s.metrics
	}

	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.TrustedProxies))
	s.router.Use(middleware.Logger(obs))
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil && s.cfg.MetricsPath != "" {
		s.router.Handle(s.cfg.MetricsPath, s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(chimw.AllowContentType("application/json", "multipart/form-data"))
		r.NotFound(s.handleNotFound)

		// Session
		r.With(chimw.Timeout(s.cfg.RequestTimeout), s.rateLimit).Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(s.identity, s.cfg.CookieName, s.respondErrorStatus))

			r.Group(func(r chi.Router) {
				r.Use(chimw.Timeout(s.cfg.RequestTimeout))

				r.Get("/auth/session", s.handleSession)

				// Reads
				r.Get("/buyers", s.handleListBuyers)
				r.Get("/buyers/export", s.handleExport)
				r.Get("/buyers/{id}", s.handleGetBuyer)
				r.Get("/buyers/{id}/history", s.handleBuyerHistory)

				// Mutations
				r.Group(func(r chi.Router) {
					r.Use(s.rateLimit)
					r.Post("/buyers", s.handleCreateBuyer)
					r.Put("/buyers/{id}", s.handleUpdateBuyer)
					r.Delete("/buyers/{id}", s.handleDeleteBuyer)
				})
			})

			// Import gets its own deadline: it may wait for a limiter slot.
			r.With(chimw.Timeout(s.cfg.ImportTimeout), s.rateLimit).Post("/buyers/import", s.handleImport)
		})
	})
}

// rateLimit applies the caller limiter, or passes through when none is set.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	var rec middleware.RateLimitRecorder
	if s.metrics != nil {
		rec = s.metrics
	}
	return middleware.RateLimit(s.limiter, rec, s.respondErrorStatus)(next)
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string, read, write, idle time.Duration) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  read,
		WriteTimeout: write,
		IdleTimeout:  idle,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.respondErrorStatus(w, r, badRequest("unknown endpoint"), http.StatusNotFound)
}

// healthResponse is the /healthz body.
type healthResponse struct {
	Status  string                    `json:"status"`
	Imports *core.ImportLimiterStatus `json:"imports,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if l := s.service.Limiter(); l != nil {
		st := l.Status()
		resp.Imports = &st
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 64<<10))
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON body")
	}
	return nil
}
