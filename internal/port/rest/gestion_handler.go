package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardtienda/backend/internal/domain/entity"
	"github.com/cardtienda/backend/internal/platform/logger"
	"github.com/cardtienda/backend/internal/repository"
	"github.com/cardtienda/backend/internal/service"
)

// GestionHandler exposes the back-office inventory surface: stock levels,
// sale flags, custom prices and catalog price snapshots, keyed by card id.
type GestionHandler struct {
	gestion service.GestionService
	log     logger.Logger
}

func NewGestionHandler(gestion service.GestionService, log logger.Logger) *GestionHandler {
	return &GestionHandler{gestion: gestion, log: log}
}

type upsertGestionRequest struct {
	StockLevel    int              `json:"stock_level"`
	ActiveForSale bool             `json:"active_for_sale"`
	CustomPrice   entity.FlexPrice `json:"custom_price"`
}

func (h *GestionHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	var req upsertGestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StockLevel < 0 {
		respondError(w, http.StatusBadRequest, "stock_level cannot be negative")
		return
	}

	record, err := h.gestion.UpsertGestion(r.Context(), service.UpsertGestionParams{
		CardID:        cardID,
		StockLevel:    req.StockLevel,
		ActiveForSale: req.ActiveForSale,
		CustomPrice:   req.CustomPrice,
	})
	if err != nil {
		h.log.Errorf("UpsertGestion: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (h *GestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.gestion.GetGestion(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		h.log.Errorf("GetGestion: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

type adjustStockRequest struct {
	Delta int `json:"delta"`
}

func (h *GestionHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Delta == 0 {
		respondError(w, http.StatusBadRequest, "delta must be a non-zero integer")
		return
	}

	record, err := h.gestion.AdjustStock(r.Context(), chi.URLParam(r, "cardID"), req.Delta)
	if err != nil {
		h.log.Errorf("AdjustStock: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (h *GestionHandler) RefreshSnapshot(w http.ResponseWriter, r *http.Request) {
	record, err := h.gestion.RefreshCatalogSnapshot(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		h.log.Errorf("RefreshCatalogSnapshot: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (h *GestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.gestion.DeleteGestion(r.Context(), chi.URLParam(r, "cardID")); err != nil {
		h.log.Errorf("DeleteGestion: %v", err)
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GestionHandler) List(w http.ResponseWriter, r *http.Request) {
	params := repository.ListGestionParams{
		ActiveOnly: r.URL.Query().Get("active_only") == "true",
		Page:       queryInt(r, "page", 1),
		PageSize:   queryInt(r, "page_size", 20),
	}
	result, err := h.gestion.ListGestion(r.Context(), params)
	if err != nil {
		h.log.Errorf("ListGestion: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
