package rest

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cardtienda/backend/internal/platform/logger"
	"github.com/cardtienda/backend/internal/service"
)

type CardHandler struct {
	cards service.CardService
	log   logger.Logger
}

func NewCardHandler(cards service.CardService, log logger.Logger) *CardHandler {
	return &CardHandler{cards: cards, log: log}
}

func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	if cardID == "" {
		respondError(w, http.StatusBadRequest, "card id is required")
		return
	}

	card, err := h.cards.GetCard(r.Context(), cardID)
	if err != nil {
		h.log.Errorf("GetCard: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, card)
}

func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	cards, err := h.cards.SearchCards(r.Context(), query)
	if err != nil {
		h.log.Errorf("SearchCards: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": cards, "total": len(cards)})
}
