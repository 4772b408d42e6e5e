package httpx

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ariefcatur/go-watch-orders/internal/orders"
	"github.com/ariefcatur/go-watch-orders/internal/session"
	"github.com/go-chi/chi/v5"
)

type placeOrderReq struct {
	PaymentMethod  orders.PaymentMethod  `json:"paymentMethod"`
	DeliveryMethod orders.DeliveryMethod `json:"deliveryMethod"`
}

// orderView is an order plus what the caller may do with it next.
type orderView struct {
	orders.Order
	Allowed        []orders.Transition `json:"allowed"`
	MerchantNumber string              `json:"merchantNumber,omitempty"`
}

func (h *Handler) view(r *http.Request, actor orders.Actor, o orders.Order) orderView {
	v := orderView{Order: o, Allowed: session.Capabilities(actor, o)}
	if v.Allowed == nil {
		v.Allowed = []orders.Transition{}
	}
	if o.Status == orders.StatusAwaitingPayment {
		v.MerchantNumber = h.Store.MerchantNumbers(r.Context()).For(o.PaymentMethod)
	}
	return v
}

func writeOrder(w http.ResponseWriter, code int, v orderView) {
	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(v.Version)))
	writeJSON(w, code, v)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderReq
	if !decode(r, &req, false) {
		badJSON(w)
		return
	}
	actor, u := h.Gate.Current(r.Context())
	if err := session.RequireCustomer(actor); err != nil || u == nil {
		writeError(w, fmt.Errorf("place order: %w", orders.ErrForbidden))
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	h.mu.Lock()
	defer h.mu.Unlock()
	c := h.cart(actor.UserID)
	if c.Empty() {
		writeError(w, fmt.Errorf("%w: cart is empty", orders.ErrInvalidInput))
		return
	}
	o, err := h.Engine.PlaceOrder(ctx, *u, c.Snapshot(), req.PaymentMethod, req.DeliveryMethod)
	if err != nil {
		writeError(w, err)
		return
	}
	c.Clear()
	writeOrder(w, http.StatusCreated, h.view(r, actor, o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	actor, _ := h.Gate.Current(r.Context())
	var list []orders.Order
	switch actor.Role {
	case orders.RoleAdmin:
		list = h.Store.Orders(r.Context())
	case orders.RoleCustomer:
		list = h.Store.OrdersByUser(r.Context(), actor.UserID)
	default:
		writeError(w, fmt.Errorf("list orders: %w", orders.ErrForbidden))
		return
	}
	out := make([]orderView, 0, len(list))
	for _, o := range list {
		out = append(out, h.view(r, actor, o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	actor, _ := h.Gate.Current(r.Context())
	o, err := h.Store.Order(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !canSee(actor, o) {
		writeError(w, fmt.Errorf("order %s: %w", o.ID, orders.ErrForbidden))
		return
	}
	writeOrder(w, http.StatusOK, h.view(r, actor, o))
}

func canSee(actor orders.Actor, o orders.Order) bool {
	return actor.Role == orders.RoleAdmin ||
		(actor.Role == orders.RoleCustomer && actor.UserID == o.Shipping.UserID)
}

func (h *Handler) applyTransition(w http.ResponseWriter, r *http.Request) {
	var cost orders.CostInput
	if !decode(r, &cost, true) {
		badJSON(w)
		return
	}
	expected := 0
	if v := r.Header.Get("If-Match"); v != "" {
		n, err := strconv.Atoi(strings.Trim(v, `"`))
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "If-Match must be an order version"})
			return
		}
		expected = n
	}
	actor, _ := h.Gate.Current(r.Context())
	ctx, cancel := withTimeout(r)
	defer cancel()

	t := orders.Transition(chi.URLParam(r, "name"))
	o, err := h.Engine.ApplyExpected(ctx, actor, chi.URLParam(r, "id"), t, cost, expected)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOrder(w, http.StatusOK, h.view(r, actor, o))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	customers := 0
	for _, u := range h.Store.Users(r.Context()) {
		if u.Role == orders.RoleCustomer {
			customers++
		}
	}
	writeJSON(w, http.StatusOK, orders.Summarize(h.Store.Orders(r.Context()), customers))
}
