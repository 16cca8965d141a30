// Package api provides the HTTP server for wildtrail: per-user progression
// state, activity ingestion, challenge and route lifecycle, export/import,
// the notification inbox and the static catalog.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wildtrail/wildtrail/internal/app/progression"
	"github.com/wildtrail/wildtrail/internal/domain"
	"github.com/wildtrail/wildtrail/internal/health"
	"github.com/wildtrail/wildtrail/internal/platform/logger"
)

// Sessions runs operations against a user's engine with access serialized.
type Sessions interface {
	Do(ctx context.Context, userID, op string, fn func(e *progression.Engine) error) error
	HandleEvent(ctx context.Context, userID string, ev domain.ActivityEvent) (progression.Outcome, error)
}

// Catalog lists the static definitions served by GET /api/catalog.
type Catalog interface {
	ChallengeTemplates() []domain.ChallengeTemplate
	RouteTemplates() []domain.RouteTemplate
	Achievements() []domain.AchievementDef
	Collections() map[string]int
}

// Inbox lists pending notifications.
type Inbox interface {
	Pending(userID string, limit int) ([]domain.Notification, error)
	MarkShown(userID string, id int64) (bool, error)
}

// HealthReporter exposes the latest health check results.
type HealthReporter interface {
	Statuses() []health.Status
	IsHealthy() bool
}

// Server is the wildtrail HTTP API server.
type Server struct {
	sessions       Sessions
	catalog        Catalog
	inbox          Inbox
	health         HealthReporter
	corsOrigins    []string
	metricsEnabled bool
	now            func() time.Time
	log            *logger.Logger
}

// NewServer creates a new API server.
func NewServer(sessions Sessions, catalog Catalog) *Server {
	return &Server{
		sessions:    sessions,
		catalog:     catalog,
		corsOrigins: []string{"*"},
		now:         time.Now,
		log:         logger.Nop(),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetInbox enables the notification endpoints.
func (s *Server) SetInbox(i Inbox) { s.inbox = i }

// SetHealth reports checker results on the health endpoints.
func (s *Server) SetHealth(h HealthReporter) { s.health = h }

// SetLogger sets the request error logger.
func (s *Server) SetLogger(l *logger.Logger) { s.log = l }

// SetCORSOrigins restricts Access-Control-Allow-Origin.
func (s *Server) SetCORSOrigins(origins []string) { s.corsOrigins = origins }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealthDetail)
		r.Get("/catalog", s.handleCatalog)

		r.Route("/users/{user}", func(r chi.Router) {
			r.Get("/state", s.handleState)
			r.Post("/events", s.handleEvent)

			r.Post("/challenges", s.handleActivateChallenge)
			r.Post("/challenges/{instance}/abandon", s.handleAbandonChallenge)

			r.Post("/routes", s.handleStartRoute)
			r.Post("/routes/{instance}/activities", s.handleWaypointActivity)
			r.Post("/routes/{instance}/discoveries", s.handleDiscovery)
			r.Post("/routes/{instance}/abandon", s.handleAbandonRoute)

			r.Get("/export", s.handleExport)
			r.Post("/import", s.handleImport)

			r.Get("/notifications", s.handleNotifications)
			r.Post("/notifications/{id}/shown", s.handleNotificationShown)
		})
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeRejected answers a rejected operation.
func writeRejected(w http.ResponseWriter, reason string) {
	body := map[string]interface{}{"accepted": false}
	if reason != "" {
		body["reason"] = reason
	}
	writeJSON(w, http.StatusConflict, body)
}

// corsMiddleware adds CORS headers for browser clients.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	for _, o := range s.corsOrigins {
		if o == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}
