// Package handlers provides HTTP handlers for virtual portfolios.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"fundscope/internal/modules/navseries"
	"fundscope/internal/modules/virtualportfolio"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const defaultUserID = "default"

// Handler provides HTTP handlers for virtual portfolio endpoints.
type Handler struct {
	service *virtualportfolio.Service
	log     zerolog.Logger
}

// NewHandler creates a new virtual portfolio handler.
func NewHandler(service *virtualportfolio.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "virtual_portfolio").Logger(),
	}
}

func userID(r *http.Request) string {
	if u := r.URL.Query().Get("user"); u != "" {
		return u
	}
	return defaultUserID
}

// HandleList handles GET /api/portfolios
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(userID(r))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list portfolios")
		http.Error(w, "Failed to list portfolios", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []virtualportfolio.Portfolio{}
	}
	writeJSON(w, h.log, http.StatusOK, list)
}

// HandleCreate handles POST /api/portfolios
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req virtualportfolio.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.Create(userID(r), req)
	if err != nil {
		h.writeError(w, err, "Failed to create portfolio")
		return
	}
	writeJSON(w, h.log, http.StatusCreated, p)
}

// HandleGet handles GET /api/portfolios/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get portfolio")
		http.Error(w, "Failed to get portfolio", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.Error(w, "Portfolio not found", http.StatusNotFound)
		return
	}
	writeJSON(w, h.log, http.StatusOK, p)
}

// HandleUpdate handles PUT /api/portfolios/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req virtualportfolio.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.Update(chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeError(w, err, "Failed to update portfolio")
		return
	}
	if p == nil {
		http.Error(w, "Portfolio not found", http.StatusNotFound)
		return
	}
	writeJSON(w, h.log, http.StatusOK, p)
}

// HandleDelete handles DELETE /api/portfolios/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.Delete(chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to delete portfolio")
		http.Error(w, "Failed to delete portfolio", http.StatusInternalServerError)
		return
	}
	if !removed {
		http.Error(w, "Portfolio not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefresh handles POST /api/portfolios/{id}/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Refresh(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "Failed to refresh portfolio")
		return
	}
	if p == nil {
		http.Error(w, "Portfolio not found", http.StatusNotFound)
		return
	}
	writeJSON(w, h.log, http.StatusOK, p)
}

// writeError maps calculation errors to 400s with their message; other
// failures become opaque 500s.
func (h *Handler) writeError(w http.ResponseWriter, err error, logMsg string) {
	if errors.Is(err, navseries.ErrInvalidParams) ||
		errors.Is(err, navseries.ErrInsufficientData) ||
		errors.Is(err, navseries.ErrNoData) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.log.Error().Err(err).Msg(logMsg)
	http.Error(w, logMsg, http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
