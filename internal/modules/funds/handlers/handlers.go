// Package handlers provides HTTP handlers for fund directory search and
// scheme details.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"fundscope/internal/modules/funds"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler provides HTTP handlers for fund endpoints.
type Handler struct {
	service *funds.Service
	log     zerolog.Logger
}

// NewHandler creates a new funds handler.
func NewHandler(service *funds.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "funds").Logger(),
	}
}

// HandleSearch handles GET /api/funds?search=...&page=...&limit=...&activeOnly=...
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("search")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("activeOnly"))

	result, err := h.service.SearchDirectory(query, page, limit, activeOnly)
	if err != nil {
		h.log.Error().Err(err).Str("query", query).Msg("Directory search failed")
		http.Error(w, "Failed to search funds", http.StatusBadGateway)
		return
	}

	writeJSON(w, h.log, result)
}

// HandleGet handles GET /api/funds/{code}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		http.Error(w, "Invalid scheme code", http.StatusBadRequest)
		return
	}

	detail, err := h.service.GetFund(code)
	if err != nil {
		h.log.Error().Err(err).Int("scheme_code", code).Msg("Failed to get fund")
		http.Error(w, "Fund not found", http.StatusNotFound)
		return
	}

	writeJSON(w, h.log, detail)
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
