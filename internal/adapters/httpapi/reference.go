package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"aquacore/pkg/domain"
)

// itemID extracts the entity ID from the path remainder after the collection
// prefix. An empty string means the remainder does not name a single item.
func itemID(remainder string) string {
	id := strings.TrimPrefix(remainder, "/")
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

func (h *Handler) handleSpecies(w http.ResponseWriter, r *http.Request, remainder string) {
	if remainder == "" {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"species": h.Service.ListSpecies()})
		case http.MethodPost:
			var input domain.Species
			if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
				writeError(w, http.StatusBadRequest, "invalid species payload")
				return
			}
			created, res, err := h.Service.CreateSpecies(r.Context(), input)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeEntity(w, http.StatusCreated, "species", created, res.Violations)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	id := itemID(remainder)
	if id == "" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		sp, ok := h.Service.GetSpecies(id)
		if !ok {
			writeError(w, http.StatusNotFound, "species not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"species": sp})
	case http.MethodPut:
		var input domain.Species
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid species payload")
			return
		}
		updated, res, err := h.Service.UpdateSpecies(r.Context(), id, func(sp *domain.Species) error {
			base := sp.Base
			*sp = input
			sp.Base = base
			return nil
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeEntity(w, http.StatusOK, "species", updated, res.Violations)
	case http.MethodDelete:
		if _, err := h.Service.DeleteSpecies(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleTanks(w http.ResponseWriter, r *http.Request, remainder string) {
	if remainder == "" {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"tanks": h.Service.ListTanks()})
		case http.MethodPost:
			var input domain.Tank
			if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
				writeError(w, http.StatusBadRequest, "invalid tank payload")
				return
			}
			created, res, err := h.Service.CreateTank(r.Context(), input)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeEntity(w, http.StatusCreated, "tank", created, res.Violations)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	id := itemID(remainder)
	if id == "" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		tank, ok := h.Service.GetTank(id)
		if !ok {
			writeError(w, http.StatusNotFound, "tank not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tank": tank})
	case http.MethodPut:
		var input domain.Tank
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid tank payload")
			return
		}
		updated, res, err := h.Service.UpdateTank(r.Context(), id, func(tank *domain.Tank) error {
			base := tank.Base
			*tank = input
			tank.Base = base
			return nil
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeEntity(w, http.StatusOK, "tank", updated, res.Violations)
	case http.MethodDelete:
		if _, err := h.Service.DeleteTank(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handlePlans(w http.ResponseWriter, r *http.Request, remainder string) {
	if remainder == "" {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"plans": h.Service.ListStockingPlans()})
		case http.MethodPost:
			var input domain.StockingPlan
			if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
				writeError(w, http.StatusBadRequest, "invalid stocking plan payload")
				return
			}
			created, res, err := h.Service.CreateStockingPlan(r.Context(), input)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeEntity(w, http.StatusCreated, "plan", created, res.Violations)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	id := itemID(remainder)
	if id == "" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		plan, ok := h.Service.GetStockingPlan(id)
		if !ok {
			writeError(w, http.StatusNotFound, "stocking plan not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"plan": plan})
	case http.MethodPut:
		var input domain.StockingPlan
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid stocking plan payload")
			return
		}
		updated, res, err := h.Service.UpdateStockingPlan(r.Context(), id, func(plan *domain.StockingPlan) error {
			base := plan.Base
			*plan = input
			plan.Base = base
			return nil
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeEntity(w, http.StatusOK, "plan", updated, res.Violations)
	case http.MethodDelete:
		if _, err := h.Service.DeleteStockingPlan(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleFeeds(w http.ResponseWriter, r *http.Request, remainder string) {
	if remainder == "" {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"feeds": h.Service.ListFeedItems()})
		case http.MethodPost:
			var input domain.FeedItem
			if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
				writeError(w, http.StatusBadRequest, "invalid feed item payload")
				return
			}
			created, res, err := h.Service.CreateFeedItem(r.Context(), input)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeEntity(w, http.StatusCreated, "feed", created, res.Violations)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	id := itemID(remainder)
	if id == "" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		feed, ok := h.Service.GetFeedItem(id)
		if !ok {
			writeError(w, http.StatusNotFound, "feed item not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"feed": feed})
	case http.MethodPut:
		var input domain.FeedItem
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid feed item payload")
			return
		}
		updated, res, err := h.Service.UpdateFeedItem(r.Context(), id, func(feed *domain.FeedItem) error {
			base := feed.Base
			*feed = input
			feed.Base = base
			return nil
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeEntity(w, http.StatusOK, "feed", updated, res.Violations)
	case http.MethodDelete:
		if _, err := h.Service.DeleteFeedItem(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
