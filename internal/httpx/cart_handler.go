package httpx

import (
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-watch-orders/internal/orders"
	"github.com/go-chi/chi/v5"
)

type cartResp struct {
	Items     []orders.CartItem `json:"items"`
	BaseTotal int               `json:"baseTotal"`
}

func (h *Handler) cartView(r *http.Request, c *orders.Cart) cartResp {
	resp := cartResp{Items: c.Snapshot()}
	if resp.Items == nil {
		resp.Items = []orders.CartItem{}
	}
	for _, it := range resp.Items {
		if p, err := h.Store.Product(r.Context(), it.ProductID); err == nil {
			resp.BaseTotal += p.Price * it.Quantity
		}
	}
	return resp
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	actor, _ := h.Gate.Current(r.Context())
	h.mu.Lock()
	defer h.mu.Unlock()
	writeJSON(w, http.StatusOK, h.cartView(r, h.cart(actor.UserID)))
}

type addToCartReq struct {
	ProductID string `json:"productId"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartReq
	if !decode(r, &req, false) {
		badJSON(w)
		return
	}
	p, err := h.Store.Product(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}
	actor, _ := h.Gate.Current(r.Context())

	h.mu.Lock()
	defer h.mu.Unlock()
	c := h.cart(actor.UserID)
	if err := c.Add(p, req.Color, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView(r, c))
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid index"})
		return
	}
	actor, _ := h.Gate.Current(r.Context())

	h.mu.Lock()
	defer h.mu.Unlock()
	c := h.cart(actor.UserID)
	if err := c.Remove(idx); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView(r, c))
}
