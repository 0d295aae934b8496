// Package handlers provides HTTP handlers for the watchlist.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"fundscope/internal/modules/watchlist"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// defaultUserID is used when no user is given. The app is single-user
// by default but the storage keys by user for forward compatibility.
const defaultUserID = "default"

// Handler provides HTTP handlers for watchlist endpoints.
type Handler struct {
	repo    *watchlist.Repository
	service *watchlist.Service
	log     zerolog.Logger
}

// NewHandler creates a new watchlist handler.
func NewHandler(repo *watchlist.Repository, service *watchlist.Service, log zerolog.Logger) *Handler {
	return &Handler{
		repo:    repo,
		service: service,
		log:     log.With().Str("handler", "watchlist").Logger(),
	}
}

func userID(r *http.Request) string {
	if u := r.URL.Query().Get("user"); u != "" {
		return u
	}
	return defaultUserID
}

// HandleList handles GET /api/watchlist
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.List(userID(r))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list watchlist")
		http.Error(w, "Failed to list watchlist", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []watchlist.Entry{}
	}
	writeJSON(w, h.log, entries)
}

// HandleAdd handles POST /api/watchlist
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SchemeCode int    `json:"schemeCode"`
		SchemeName string `json:"schemeName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SchemeCode <= 0 {
		http.Error(w, "schemeCode is required", http.StatusBadRequest)
		return
	}

	entry, err := h.repo.Add(userID(r), req.SchemeCode, req.SchemeName)
	if err != nil {
		h.log.Error().Err(err).Int("scheme_code", req.SchemeCode).Msg("Failed to add watchlist entry")
		http.Error(w, "Failed to add watchlist entry", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(entry); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

// HandleRemove handles DELETE /api/watchlist/{code}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		http.Error(w, "Invalid scheme code", http.StatusBadRequest)
		return
	}

	removed, err := h.repo.Remove(userID(r), code)
	if err != nil {
		h.log.Error().Err(err).Int("scheme_code", code).Msg("Failed to remove watchlist entry")
		http.Error(w, "Failed to remove watchlist entry", http.StatusInternalServerError)
		return
	}
	if !removed {
		http.Error(w, "Scheme not in watchlist", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandlePerformance handles GET /api/watchlist/performance
func (h *Handler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Performance(userID(r))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute watchlist performance")
		http.Error(w, "Failed to compute performance", http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.log, snapshot)
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
