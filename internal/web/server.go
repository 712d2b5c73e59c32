// Package web provides the HTTP API for catalog imports: previewing
// spreadsheets, confirming or cancelling batches, downloading templates
// and error reports, and managing vendor pricing profiles.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/catalogimport/internal/config"
	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/JonMunkholm/catalogimport/internal/web/middleware"
)

// PricingProfileStore reads and writes vendor pricing profiles.
type PricingProfileStore interface {
	core.PricingProfileProvider
	SetPricingProfile(ctx context.Context, vendorID string, profile core.PricingProfile) error
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the import service.
type Server struct {
	service  *core.Service
	profiles PricingProfileStore
	health   Pinger
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server. profiles and health may be nil; the
// pricing-profile routes then respond 501 and /healthz skips the check.
func NewServer(cfg *config.Config, service *core.Service, profiles PricingProfileStore, health Pinger) *Server {
	s := &Server{
		service:  service,
		profiles: profiles,
		health:   health,
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := middleware.NewIPRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.Handler)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(&s.cfg.Security))

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

			r.Get("/categories", s.handleListCategories)
			r.Get("/templates/{productType}", s.handleDownloadTemplate)
			r.Get("/import-queue", s.handleImportQueue)
		})

		// Vendor-scoped routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.VendorScope)

			r.Group(func(r chi.Router) {
				r.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

				r.Get("/imports/{batchID}", s.handleGetBatch)
				r.Post("/imports/{batchID}/cancel", s.handleCancelBatch)
				r.Get("/imports/{batchID}/errors.csv", s.handleErrorReport)
				r.Get("/pricing-profile", s.handleGetPricingProfile)
				r.Put("/pricing-profile", s.handlePutPricingProfile)
			})

			// Preview and confirm are bounded by the service's own timeouts
			r.Group(func(r chi.Router) {
				if s.cfg.Rate.Enabled {
					limiter := middleware.NewIPRateLimiter(s.cfg.Rate.ImportLimit, time.Minute)
					r.Use(limiter.Handler)
				}

				r.Post("/preview/{productType}", s.handlePreview)
				r.Post("/imports/{batchID}/confirm", s.handleConfirmBatch)
			})
		})
	})
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
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

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			slog.Warn("health check failed", "error", err)
			writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON. Encoding errors are only logged since
// headers are already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
