// Package httpapi exposes the aquacore service over HTTP: stocking
// evaluation, reference-data CRUD, report export jobs, health, and metrics.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aquacore/internal/adapters/reports"
	"aquacore/internal/core"
	"aquacore/internal/stocking"
	"aquacore/pkg/domain"
)

// Handler routes the aquacore HTTP API. Reports, Metrics, and Logger are
// optional; endpoints backed by an unset collaborator answer 404.
type Handler struct {
	Service *core.Service
	Reports reports.Scheduler
	Metrics http.Handler
	Logger  core.Logger
}

// NewHandler constructs an API handler around the service.
func NewHandler(service *core.Service) *Handler {
	return &Handler{Service: service}
}

// MetricsHandler exposes a prometheus gatherer in text exposition format,
// suitable for the Handler's Metrics field.
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
	if requestID == "" {
		requestID = newRequestID()
	}
	w.Header().Set("X-Request-ID", requestID)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	h.route(rec, r)
	if h.Logger != nil {
		h.Logger.Info("http request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (h *Handler) route(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == "" {
		path = "/"
	}

	switch {
	case path == "/healthz":
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case path == "/metrics":
		if h.Metrics == nil {
			http.NotFound(w, r)
			return
		}
		h.Metrics.ServeHTTP(w, r)
	case strings.HasPrefix(path, "/api/v1/"):
		h.routeAPI(w, r, path)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) routeAPI(w http.ResponseWriter, r *http.Request, path string) {
	if h.Service == nil {
		writeError(w, http.StatusInternalServerError, "service not configured")
		return
	}
	switch {
	case path == "/api/v1/stocking/evaluate":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleEvaluate(w, r)
	case path == "/api/v1/reports" || strings.HasPrefix(path, "/api/v1/reports/"):
		if h.Reports == nil {
			http.NotFound(w, r)
			return
		}
		h.handleReports(w, r, path)
	case path == "/api/v1/species" || strings.HasPrefix(path, "/api/v1/species/"):
		h.handleSpecies(w, r, strings.TrimPrefix(path, "/api/v1/species"))
	case path == "/api/v1/tanks" || strings.HasPrefix(path, "/api/v1/tanks/"):
		h.handleTanks(w, r, strings.TrimPrefix(path, "/api/v1/tanks"))
	case path == "/api/v1/plans" || strings.HasPrefix(path, "/api/v1/plans/"):
		h.handlePlans(w, r, strings.TrimPrefix(path, "/api/v1/plans"))
	case path == "/api/v1/feeds" || strings.HasPrefix(path, "/api/v1/feeds/"):
		h.handleFeeds(w, r, strings.TrimPrefix(path, "/api/v1/feeds"))
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req stocking.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid evaluation request payload")
		return
	}
	report, err := h.Service.EvaluateStocking(r.Context(), req)
	if err != nil {
		var dim stocking.InvalidDimensionError
		if errors.As(err, &dim) {
			writeError(w, http.StatusBadRequest, dim.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

const requestIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func newRequestID() string {
	return "req_" + gonanoid.MustGenerate(requestIDAlphabet, 12)
}

type violationJSON struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Entity   string `json:"entity,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
}

func violationsJSON(violations []domain.Violation) []violationJSON {
	if len(violations) == 0 {
		return nil
	}
	out := make([]violationJSON, len(violations))
	for i, v := range violations {
		out[i] = violationJSON{
			Rule:     v.Rule,
			Severity: string(v.Severity),
			Message:  v.Message,
			Entity:   string(v.Entity),
			EntityID: v.EntityID,
		}
	}
	return out
}

// writeServiceError maps service failures onto HTTP statuses: missing
// entities answer 404, rule-blocked commits answer 422 with the violation
// list, anything else is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var notFound domain.ErrNotFound
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, notFound.Error())
		return
	}
	var blocked domain.RuleViolationError
	if errors.As(err, &blocked) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      blocked.Error(),
			"violations": violationsJSON(blocked.Result.Violations),
		})
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// writeEntity responds with the entity under its JSON key, attaching
// non-blocking violations recorded by the commit when present.
func writeEntity(w http.ResponseWriter, status int, key string, entity any, violations []domain.Violation) {
	payload := map[string]any{key: entity}
	if vs := violationsJSON(violations); len(vs) > 0 {
		payload["violations"] = vs
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
