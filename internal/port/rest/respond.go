package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cardtienda/backend/internal/repository"
	"github.com/cardtienda/backend/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps the sentinel errors the service layer returns onto
// HTTP statuses. Anything unrecognized is reported as a 500 without leaking
// the underlying error text.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, repository.ErrOptimisticLock):
		respondError(w, http.StatusConflict, "resource was modified concurrently, retry")
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "cart is empty")
	case errors.Is(err, service.ErrNotPurchasable):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrQuoteForbidden):
		respondError(w, http.StatusForbidden, "not allowed to act on this quote")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
