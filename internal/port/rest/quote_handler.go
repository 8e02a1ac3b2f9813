package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardtienda/backend/internal/domain/entity"
	"github.com/cardtienda/backend/internal/platform/logger"
	"github.com/cardtienda/backend/internal/repository"
	"github.com/cardtienda/backend/internal/service"
)

type QuoteHandler struct {
	quotes service.QuoteService
	log    logger.Logger
}

func NewQuoteHandler(quotes service.QuoteService, log logger.Logger) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, log: log}
}

type requestQuoteRequest struct {
	CardID        string  `json:"card_id"`
	Quantity      int     `json:"quantity"`
	ProposedPrice float64 `json:"proposed_price"`
}

func (h *QuoteHandler) RequestQuote(w http.ResponseWriter, r *http.Request) {
	var req requestQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CardID == "" {
		respondError(w, http.StatusBadRequest, "card_id is required")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	quote, err := h.quotes.RequestQuote(r.Context(), UserIDFromContext(r.Context()), req.CardID, req.Quantity, req.ProposedPrice)
	if err != nil {
		h.log.Errorf("RequestQuote: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, quote)
}

func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	quote, err := h.quotes.GetQuoteByID(ctx, chi.URLParam(r, "quoteID"), UserIDFromContext(ctx), IsAdmin(ctx))
	if err != nil {
		h.log.Errorf("GetQuote: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) ListMyQuotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.quotes.ListUserQuotes(ctx, UserIDFromContext(ctx), queryInt(r, "page", 1), queryInt(r, "page_size", 20))
	if err != nil {
		h.log.Errorf("ListMyQuotes: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *QuoteHandler) AcceptQuote(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.quotes.AcceptQuote)
}

func (h *QuoteHandler) RejectQuote(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.quotes.RejectQuote)
}

func (h *QuoteHandler) decide(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, quoteID, actorID string, isAdmin bool) (*entity.Quote, error),
) {
	ctx := r.Context()
	quote, err := fn(ctx, chi.URLParam(r, "quoteID"), UserIDFromContext(ctx), IsAdmin(ctx))
	if err != nil {
		h.log.Errorf("quote decision: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) CancelQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	quote, err := h.quotes.CancelQuote(ctx, chi.URLParam(r, "quoteID"), UserIDFromContext(ctx))
	if err != nil {
		h.log.Errorf("CancelQuote: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

type counterQuoteRequest struct {
	CounterPrice float64 `json:"counter_price"`
	Note         string  `json:"note"`
}

func (h *QuoteHandler) AdminCounterQuote(w http.ResponseWriter, r *http.Request) {
	var req counterQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CounterPrice <= 0 {
		respondError(w, http.StatusBadRequest, "counter_price must be positive")
		return
	}

	quote, err := h.quotes.CounterQuote(r.Context(), chi.URLParam(r, "quoteID"), req.CounterPrice, req.Note)
	if err != nil {
		h.log.Errorf("AdminCounterQuote: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) AdminListQuotes(w http.ResponseWriter, r *http.Request) {
	params := repository.ListQuotesParams{
		UserID:   r.URL.Query().Get("user_id"),
		Status:   r.URL.Query().Get("status"),
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 20),
	}
	result, err := h.quotes.ListAllQuotesAdmin(r.Context(), params)
	if err != nil {
		h.log.Errorf("AdminListQuotes: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
