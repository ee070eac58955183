// Package web provides the HTTP server and handlers for the ERP dashboard.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/erpdash/internal/config"
	"github.com/JonMunkholm/erpdash/internal/core"
	mw "github.com/JonMunkholm/erpdash/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Server is the HTTP server for the dashboard.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	limiter *rateLimiter
	checks  map[string]HealthCheck
}

// Option customizes a Server.
type Option func(*Server)

// WithHealthCheck adds a named dependency check to /healthz.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(s *Server) {
		s.checks[name] = check
	}
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
		checks:  make(map[string]HealthCheck),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestMetadata)
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	// Applied in setupRoutes to everything except /healthz and static assets.
	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.router.Get("/healthz", s.handleHealth)
	s.router.NotFound(s.handleNotFound)

	s.router.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.middleware)
		}

		// Pages
		r.Get("/", s.handleDashboard)
		r.Get("/products", s.handleProducts)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/customers", s.handleCustomers)
		r.Get("/projects", s.handleProjects)

		// Form posts
		r.Post("/customers", s.handleCreateCustomer)
		r.Post("/customers/{id}/delete", s.handleDeleteCustomer)
		r.Post("/customers/columns", s.handleCreateCustomerColumn)
		r.Post("/customers/import", s.handleImportCustomers)
		r.Post("/customers/snapshot", s.handleSnapshotForm)
		r.Post("/projects/columns", s.handleCreateProjectColumn)

		// API routes
		r.Route("/api", func(r chi.Router) {
			r.Use(mw.APIKeyAuth(&s.cfg.Security))

			r.Get("/dashboard", s.apiDashboard)
			r.Get("/products", s.apiProducts)

			r.Get("/customers", s.apiListCustomers)
			r.Post("/customers", s.apiCreateCustomer)
			r.Delete("/customers/{id}", s.apiDeleteCustomer)
			r.Get("/customers/columns", s.apiListCustomerColumns)
			r.Post("/customers/columns", s.apiCreateCustomerColumn)
			r.Get("/customers/export", s.apiExportCustomers)
			r.Post("/customers/import", s.apiImportCustomers)
			r.Post("/customers/snapshot", s.apiSnapshot)

			r.Get("/projects", s.apiListProjects)
			r.Get("/projects/columns", s.apiListProjectColumns)
			r.Post("/projects/columns", s.apiCreateProjectColumn)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background work.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Close()
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// healthResponse is the /healthz body.
type healthResponse struct {
	Status    string             `json:"status"`
	Checks    map[string]string  `json:"checks,omitempty"`
	Exports   core.LimiterStatus `json:"exports"`
	Snapshots bool               `json:"snapshots"`
	Customers int                `json:"customers"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Exports:   s.service.Exports().Status(),
		Snapshots: s.service.SnapshotsEnabled(),
		Customers: s.service.CustomerCount(),
	}
	status := http.StatusOK
	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for name, check := range s.checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}
	writeJSONStatus(w, status, resp)
}

// contentSecurityPolicy allows htmx from unpkg and inline styles for chart bars.
const contentSecurityPolicy = "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'"

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				h.Set("Content-Security-Policy", contentSecurityPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes a JSON error response with a fixed message.
func writeError(w http.ResponseWriter, status int, message string) {
	msg := core.MapError(stringError(message))
	slog.Warn("http error", "status", status, "message", message, "code", msg.Code)
	writeJSONStatus(w, status, ErrorResponse{
		Error:   message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

type stringError string

func (e stringError) Error() string { return string(e) }

// writeJSON encodes v as JSON with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON.
// Logs encoding errors since headers are already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
