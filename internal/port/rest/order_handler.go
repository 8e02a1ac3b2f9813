package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardtienda/backend/internal/domain/entity"
	"github.com/cardtienda/backend/internal/platform/logger"
	"github.com/cardtienda/backend/internal/repository"
	"github.com/cardtienda/backend/internal/service"
)

type OrderHandler struct {
	orders  service.OrderService
	tickets service.TicketService
	log     logger.Logger
}

func NewOrderHandler(orders service.OrderService, tickets service.TicketService, log logger.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, tickets: tickets, log: log}
}

type placeOrderRequest struct {
	ShippingAddress entity.Address `json:"shipping_address"`
}

func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	order, err := h.orders.PlaceOrder(ctx, UserIDFromContext(ctx), UserEmailFromContext(ctx), req.ShippingAddress)
	if err != nil {
		h.log.Errorf("PlaceOrder: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	order, err := h.orders.GetOrderByID(ctx, chi.URLParam(r, "orderID"), UserIDFromContext(ctx), IsAdmin(ctx))
	if err != nil {
		h.log.Errorf("GetOrder: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.orders.ListUserOrders(ctx, UserIDFromContext(ctx), queryInt(r, "page", 1), queryInt(r, "page_size", 20))
	if err != nil {
		h.log.Errorf("ListMyOrders: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	order, err := h.orders.CancelUserOrder(ctx, chi.URLParam(r, "orderID"), UserIDFromContext(ctx))
	if err != nil {
		h.log.Errorf("CancelOrder: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// DownloadTicket streams the plain-text purchase ticket as an attachment.
func (h *OrderHandler) DownloadTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, filename, err := h.tickets.GenerateOrderTicket(ctx, chi.URLParam(r, "orderID"), UserIDFromContext(ctx), IsAdmin(ctx))
	if err != nil {
		h.log.Errorf("DownloadTicket: %v", err)
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, ok := entity.ParseOrderStatus(req.Status)
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown order status: "+req.Status)
		return
	}

	order, err := h.orders.UpdateOrderStatusByAdmin(r.Context(), chi.URLParam(r, "orderID"), status)
	if err != nil {
		h.log.Errorf("AdminUpdateStatus: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	params := repository.ListOrdersParams{
		UserID:    r.URL.Query().Get("user_id"),
		Status:    r.URL.Query().Get("status"),
		Page:      queryInt(r, "page", 1),
		PageSize:  queryInt(r, "page_size", 20),
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}
	result, err := h.orders.ListAllOrdersAdmin(r.Context(), params)
	if err != nil {
		h.log.Errorf("AdminListOrders: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
