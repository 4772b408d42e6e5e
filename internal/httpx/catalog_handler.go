package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/ariefcatur/go-watch-orders/internal/orders"
	"github.com/ariefcatur/go-watch-orders/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list := orders.FilterProducts(h.Store.Products(r.Context()), q.Get("q"), orders.Category(q.Get("category")))
	if list == nil {
		list = []orders.Product{}
	}
	writeJSON(w, http.StatusOK, list)
}

// requireAdmin writes 403 and returns false unless the session is the admin.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	actor, _ := h.Gate.Current(r.Context())
	if err := session.RequireAdmin(actor); err != nil {
		writeError(w, err)
		return false
	}
	return true
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var p orders.Product
	if !decode(r, &p, false) {
		badJSON(w)
		return
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := h.Store.AddProduct(ctx, p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := h.Store.DeleteProduct(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listOffers(w http.ResponseWriter, r *http.Request) {
	list := h.Store.Offers(r.Context())
	if list == nil {
		list = []orders.Offer{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) addOffer(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var o orders.Offer
	if !decode(r, &o, false) {
		badJSON(w)
		return
	}
	if strings.TrimSpace(o.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	o.ID = uuid.NewString()
	if o.Type == "" {
		o.Type = orders.OfferTypeOffer
	}
	o.Timestamp = time.Now().UTC()

	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := h.Store.AddOffer(ctx, o); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) deleteOffer(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := h.Store.DeleteOffer(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getMerchantNumbers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.MerchantNumbers(r.Context()))
}

func (h *Handler) setMerchantNumbers(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var m orders.MerchantNumbers
	if !decode(r, &m, false) {
		badJSON(w)
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := h.Store.SetMerchantNumbers(ctx, m); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
