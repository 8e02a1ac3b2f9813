package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardtienda/backend/internal/platform/logger"
	"github.com/cardtienda/backend/internal/service"
)

type CartHandler struct {
	carts service.CartService
	log   logger.Logger
}

func NewCartHandler(carts service.CartService, log logger.Logger) *CartHandler {
	return &CartHandler{carts: carts, log: log}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.GetCart(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		h.log.Errorf("GetCart: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type addItemRequest struct {
	CardID string `json:"card_id"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CardID == "" {
		respondError(w, http.StatusBadRequest, "card_id is required")
		return
	}

	view, err := h.carts.AddItem(r.Context(), UserIDFromContext(r.Context()), req.CardID)
	if err != nil {
		h.log.Errorf("AddItem: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.carts.UpdateQuantity(r.Context(), UserIDFromContext(r.Context()), cardID, req.Quantity)
	if err != nil {
		h.log.Errorf("UpdateQuantity: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")

	view, err := h.carts.RemoveItem(r.Context(), UserIDFromContext(r.Context()), cardID)
	if err != nil {
		h.log.Errorf("RemoveItem: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.ClearCart(r.Context(), UserIDFromContext(r.Context())); err != nil {
		h.log.Errorf("ClearCart: %v", err)
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
