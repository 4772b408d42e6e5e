package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ariefcatur/go-watch-orders/internal/chat"
	"github.com/ariefcatur/go-watch-orders/internal/orders"
	"github.com/ariefcatur/go-watch-orders/internal/session"
	"github.com/ariefcatur/go-watch-orders/internal/store"
	"github.com/go-chi/chi/v5"
)

// Notices hands out the one-shot shipped banner.
type Notices interface {
	PopShipped(ctx context.Context, userID string) (orderID string, ok bool, err error)
}

// Handler serves the shop. Every route resolves the acting user from the
// persisted session and calls one store or engine operation.
type Handler struct {
	Store   *store.Store
	Engine  *orders.Engine
	Gate    *session.Gate
	Chat    *chat.Service
	Notices Notices // optional

	mu    sync.Mutex
	carts map[string]*orders.Cart // by user id, "" for guests
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/session", func(r chi.Router) {
		r.Get("/", h.getSession)
		r.Post("/", h.login)
		r.Delete("/", h.logout)
	})
	r.Post("/users", h.signup)
	r.Get("/users", h.listUsers)
	r.Patch("/me", h.updateProfile)

	r.Get("/products", h.listProducts)
	r.Post("/products", h.addProduct)
	r.Delete("/products/{id}", h.deleteProduct)
	r.Get("/offers", h.listOffers)
	r.Post("/offers", h.addOffer)
	r.Delete("/offers/{id}", h.deleteOffer)
	r.Get("/merchant-numbers", h.getMerchantNumbers)
	r.Put("/merchant-numbers", h.setMerchantNumbers)

	r.Get("/cart", h.getCart)
	r.Post("/cart", h.addToCart)
	r.Delete("/cart/{index}", h.removeFromCart)

	r.Post("/orders", h.placeOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/transitions/{name}", h.applyTransition)
	r.Get("/stats", h.stats)

	r.Get("/chat", h.getChat)
	r.Post("/chat", h.sendChat)
	r.Get("/notifications", h.notifications)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError || code == http.StatusServiceUnavailable {
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, orders.ErrDuplicateIdentity),
		errors.Is(err, orders.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, orders.ErrPersistence):
		return http.StatusServiceUnavailable
	case errors.Is(err, orders.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, orders.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, orders.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// decode reads a JSON body. An empty body leaves v as is when optional.
func decode(r *http.Request, v any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if optional && errors.Is(err, io.EOF) {
		return true
	}
	return err == nil
}

func badJSON(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
}

func withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 5*time.Second)
}

func (h *Handler) cart(userID string) *orders.Cart {
	if h.carts == nil {
		h.carts = map[string]*orders.Cart{}
	}
	c, ok := h.carts[userID]
	if !ok {
		c = &orders.Cart{}
		h.carts[userID] = c
	}
	return c
}
