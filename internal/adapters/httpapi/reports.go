package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"aquacore/internal/adapters/reports"
	"aquacore/internal/stocking"
)

type reportRequest struct {
	PlanID      string            `json:"plan_id"`
	Request     *stocking.Request `json:"request"`
	Formats     []string          `json:"formats"`
	RequestedBy string            `json:"requested_by"`
}

func (h *Handler) handleReports(w http.ResponseWriter, r *http.Request, path string) {
	if path == "/api/v1/reports" {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"reports": h.Reports.List()})
		case http.MethodPost:
			h.handleReportCreate(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	rest := strings.TrimPrefix(path, "/api/v1/reports/")
	if rest == "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	segments := strings.Split(rest, "/")
	switch {
	case len(segments) == 1:
		record, ok := h.Reports.Get(segments[0])
		if !ok {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"report": record})
	case len(segments) == 3 && segments[1] == "artifacts":
		h.handleArtifactDownload(w, r, segments[0], segments[2])
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleReportCreate(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid report request payload")
		return
	}
	if req.PlanID == "" && req.Request == nil {
		writeError(w, http.StatusBadRequest, "plan_id or request required")
		return
	}
	if req.PlanID != "" {
		if _, ok := h.Service.GetStockingPlan(req.PlanID); !ok {
			writeError(w, http.StatusNotFound, "stocking plan not found")
			return
		}
	}

	formats := make([]reports.Format, 0, len(req.Formats))
	for _, raw := range req.Formats {
		format, err := reports.ParseFormat(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		formats = append(formats, format)
	}

	record, err := h.Reports.Enqueue(r.Context(), reports.Input{
		PlanID:      req.PlanID,
		Request:     req.Request,
		Formats:     formats,
		RequestedBy: req.RequestedBy,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"report": record})
}

func (h *Handler) handleArtifactDownload(w http.ResponseWriter, r *http.Request, reportID, artifactID string) {
	artifact, body, err := h.Reports.OpenArtifact(r.Context(), reportID, artifactID)
	if err != nil {
		writeError(w, http.StatusNotFound, "report artifact not found")
		return
	}
	defer func() { _ = body.Close() }()

	filename := fmt.Sprintf("%s.%s", reportID, artifact.Format.Extension())
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}
