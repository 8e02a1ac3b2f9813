package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardtienda/backend/internal/platform/logger"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Cards   *CardHandler
	Carts   *CartHandler
	Orders  *OrderHandler
	Quotes  *QuoteHandler
	Gestion *GestionHandler
}

// NewRouter wires the public catalog surface, the authenticated customer
// surface and the admin back-office under one chi mux.
func NewRouter(h Handlers, jwtSecret string, log logger.Logger) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(RequestLogger(log))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public catalog browsing.
	mux.Get("/api/cards/search", h.Cards.SearchCards)
	mux.Get("/api/cards/{cardID}", h.Cards.GetCard)

	// Customer surface.
	mux.Group(func(r chi.Router) {
		r.Use(JWTAuth(jwtSecret, log))

		r.Get("/api/cart", h.Carts.GetCart)
		r.Post("/api/cart/items", h.Carts.AddItem)
		r.Put("/api/cart/items/{cardID}", h.Carts.UpdateQuantity)
		r.Delete("/api/cart/items/{cardID}", h.Carts.RemoveItem)
		r.Delete("/api/cart", h.Carts.ClearCart)

		r.Post("/api/orders", h.Orders.PlaceOrder)
		r.Get("/api/orders", h.Orders.ListMyOrders)
		r.Get("/api/orders/{orderID}", h.Orders.GetOrder)
		r.Post("/api/orders/{orderID}/cancel", h.Orders.CancelOrder)
		r.Get("/api/orders/{orderID}/ticket", h.Orders.DownloadTicket)

		r.Post("/api/quotes", h.Quotes.RequestQuote)
		r.Get("/api/quotes", h.Quotes.ListMyQuotes)
		r.Get("/api/quotes/{quoteID}", h.Quotes.GetQuote)
		r.Post("/api/quotes/{quoteID}/accept", h.Quotes.AcceptQuote)
		r.Post("/api/quotes/{quoteID}/reject", h.Quotes.RejectQuote)
		r.Post("/api/quotes/{quoteID}/cancel", h.Quotes.CancelQuote)
	})

	// Admin back-office.
	mux.Group(func(r chi.Router) {
		r.Use(JWTAuth(jwtSecret, log))
		r.Use(AdminOnly(log))

		r.Get("/api/admin/gestion", h.Gestion.List)
		r.Get("/api/admin/gestion/{cardID}", h.Gestion.Get)
		r.Put("/api/admin/gestion/{cardID}", h.Gestion.Upsert)
		r.Post("/api/admin/gestion/{cardID}/stock", h.Gestion.AdjustStock)
		r.Post("/api/admin/gestion/{cardID}/snapshot", h.Gestion.RefreshSnapshot)
		r.Delete("/api/admin/gestion/{cardID}", h.Gestion.Delete)

		r.Get("/api/admin/orders", h.Orders.AdminListOrders)
		r.Patch("/api/admin/orders/{orderID}/status", h.Orders.AdminUpdateStatus)

		r.Get("/api/admin/quotes", h.Quotes.AdminListQuotes)
		r.Post("/api/admin/quotes/{quoteID}/counter", h.Quotes.AdminCounterQuote)
	})

	return mux
}
