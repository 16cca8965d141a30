package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wildtrail/wildtrail/internal/app/progression"
	"github.com/wildtrail/wildtrail/internal/domain"
	"github.com/wildtrail/wildtrail/internal/platform/validate"
)

// maxBodyBytes bounds request bodies, exports included.
const maxBodyBytes = 4 << 20

// ─── Health & Catalog ───────────────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil && !s.health.IsHealthy() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealthDetail(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"healthy": true, "checks": []interface{}{}})
		return
	}
	status := http.StatusOK
	healthy := s.health.IsHealthy()
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{
		"healthy": healthy,
		"checks":  s.health.Statuses(),
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"challenges":   s.catalog.ChallengeTemplates(),
		"routes":       s.catalog.RouteTemplates(),
		"achievements": s.catalog.Achievements(),
		"collections":  s.catalog.Collections(),
	})
}

// ─── State & Events ─────────────────────────────────────────────────────────

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var state progression.State
	err := s.sessions.Do(r.Context(), userParam(r), "view", func(e *progression.Engine) error {
		var err error
		state, err = e.View(r.Context())
		return err
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev domain.ActivityEvent
	if err := decodeBody(w, r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if ev.At.IsZero() {
		ev.At = s.now()
	}

	out, err := s.sessions.HandleEvent(r.Context(), userParam(r), ev)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if !out.Accepted {
		writeJSON(w, http.StatusConflict, out)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ─── Challenges ─────────────────────────────────────────────────────────────

type activateRequest struct {
	TemplateID string                     `json:"template_id"`
	Overrides  *domain.ChallengeOverrides `json:"overrides,omitempty"`
}

func (s *Server) handleActivateChallenge(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.TemplateID == "" {
		writeError(w, http.StatusBadRequest, "template_id is required")
		return
	}

	var inst *domain.ChallengeInstance
	err := s.sessions.Do(r.Context(), userParam(r), "challenge_activate", func(e *progression.Engine) error {
		var err error
		inst, err = e.ActivateChallenge(r.Context(), req.TemplateID, req.Overrides)
		return err
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if inst == nil {
		writeRejected(w, "challenge cannot be activated")
		return
	}
	writeJSON(w, http.StatusCreated, inst)
}

func (s *Server) handleAbandonChallenge(w http.ResponseWriter, r *http.Request) {
	instanceID := chi.URLParam(r, "instance")
	s.runBool(w, r, "challenge_abandon", func(e *progression.Engine) (bool, error) {
		return e.AbandonChallenge(r.Context(), instanceID)
	})
}

// ─── Routes ─────────────────────────────────────────────────────────────────

type startRouteRequest struct {
	TemplateID string `json:"template_id"`
}

func (s *Server) handleStartRoute(w http.ResponseWriter, r *http.Request) {
	var req startRouteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.TemplateID == "" {
		writeError(w, http.StatusBadRequest, "template_id is required")
		return
	}

	var inst *domain.RouteInstance
	err := s.sessions.Do(r.Context(), userParam(r), "route_start", func(e *progression.Engine) error {
		var err error
		inst, err = e.StartRoute(r.Context(), req.TemplateID)
		return err
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if inst == nil {
		writeRejected(w, "route cannot be started")
		return
	}
	writeJSON(w, http.StatusCreated, inst)
}

type waypointActivityRequest struct {
	Kind    domain.EventKind    `json:"kind"`
	Context domain.EventContext `json:"context"`
}

func (s *Server) handleWaypointActivity(w http.ResponseWriter, r *http.Request) {
	var req waypointActivityRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Kind.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown activity kind %q", req.Kind))
		return
	}
	instanceID := chi.URLParam(r, "instance")
	s.runBool(w, r, "route_activity", func(e *progression.Engine) (bool, error) {
		return e.RecordWaypointActivity(r.Context(), instanceID, req.Kind, req.Context)
	})
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	var d domain.Discovery
	if err := decodeBody(w, r, &d); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(d); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	instanceID := chi.URLParam(r, "instance")
	s.runBool(w, r, "route_discovery", func(e *progression.Engine) (bool, error) {
		return e.RecordDiscovery(r.Context(), instanceID, d)
	})
}

func (s *Server) handleAbandonRoute(w http.ResponseWriter, r *http.Request) {
	instanceID := chi.URLParam(r, "instance")
	s.runBool(w, r, "route_abandon", func(e *progression.Engine) (bool, error) {
		return e.AbandonRoute(r.Context(), instanceID)
	})
}

// ─── Export / Import ────────────────────────────────────────────────────────

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	userID := userParam(r)
	var data []byte
	err := s.sessions.Do(r.Context(), userID, "export", func(e *progression.Engine) error {
		var err error
		data, err = e.Export()
		return err
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", userID+".json"))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var importErr error
	err = s.sessions.Do(r.Context(), userParam(r), "import", func(e *progression.Engine) error {
		importErr = e.Import(r.Context(), data)
		return nil
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if errors.Is(importErr, domain.ErrSnapshotMalformed) || errors.Is(importErr, domain.ErrSnapshotVersion) {
		writeError(w, http.StatusBadRequest, importErr.Error())
		return
	}
	if importErr != nil {
		s.writeEngineError(w, importErr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"accepted": true})
}

// ─── Notifications ──────────────────────────────────────────────────────────

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, 100)
	}

	notifs := []domain.Notification{}
	if s.inbox != nil {
		pending, err := s.inbox.Pending(userParam(r), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		notifs = append(notifs, pending...)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifs})
}

func (s *Server) handleNotificationShown(w http.ResponseWriter, r *http.Request) {
	if s.inbox == nil {
		writeError(w, http.StatusNotFound, "notifications are disabled")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	ok, err := s.inbox.MarkShown(userParam(r), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"accepted": true})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func userParam(r *http.Request) string {
	return chi.URLParam(r, "user")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// runBool runs an operation that reports acceptance as a bool.
func (s *Server) runBool(w http.ResponseWriter, r *http.Request, op string, fn func(e *progression.Engine) (bool, error)) {
	var ok bool
	err := s.sessions.Do(r.Context(), userParam(r), op, func(e *progression.Engine) error {
		var err error
		ok, err = fn(e)
		return err
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if !ok {
		writeRejected(w, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"accepted": true})
}

// writeEngineError maps engine and store errors to HTTP statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidUser):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		s.log.Error("store unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.log.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
