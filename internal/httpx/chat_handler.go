package httpx

import (
	"fmt"
	"net/http"

	"github.com/ariefcatur/go-watch-orders/internal/chat"
	"github.com/ariefcatur/go-watch-orders/internal/orders"
)

type chatResp struct {
	With     string               `json:"with"`
	Messages []orders.ChatMessage `json:"messages"`
	Peers    []string             `json:"peers,omitempty"` // admin only
}

// defaultPeer is who an actor talks to when no peer is named: customers
// write to the admin, the admin hub listens to everyone.
func defaultPeer(actor orders.Actor) string {
	if actor.Role == orders.RoleAdmin {
		return chat.AnyPeer
	}
	return orders.AdminID
}

func (h *Handler) chatActor(w http.ResponseWriter, r *http.Request) (orders.Actor, bool) {
	actor, _ := h.Gate.Current(r.Context())
	if actor.UserID == "" {
		writeError(w, fmt.Errorf("chat: %w", orders.ErrForbidden))
		return actor, false
	}
	return actor, true
}

func (h *Handler) getChat(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.chatActor(w, r)
	if !ok {
		return
	}
	peer := r.URL.Query().Get("with")
	if peer == "" {
		peer = defaultPeer(actor)
	}
	resp := chatResp{With: peer, Messages: h.Chat.Conversation(r.Context(), actor.UserID, peer)}
	if resp.Messages == nil {
		resp.Messages = []orders.ChatMessage{}
	}
	if actor.Role == orders.RoleAdmin {
		resp.Peers = chat.Peers(h.Store.Messages(r.Context()), actor.UserID)
	}
	writeJSON(w, http.StatusOK, resp)
}

type sendChatReq struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

func (h *Handler) sendChat(w http.ResponseWriter, r *http.Request) {
	var req sendChatReq
	if !decode(r, &req, false) {
		badJSON(w)
		return
	}
	actor, ok := h.chatActor(w, r)
	if !ok {
		return
	}
	if req.To == "" {
		req.To = defaultPeer(actor)
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	m, err := h.Chat.Send(ctx, actor.UserID, req.To, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

type notificationsResp struct {
	ShippedOrderID string `json:"shippedOrderId,omitempty"`
}

func (h *Handler) notifications(w http.ResponseWriter, r *http.Request) {
	actor, _ := h.Gate.Current(r.Context())
	if h.Notices == nil || actor.Role != orders.RoleCustomer {
		writeJSON(w, http.StatusOK, notificationsResp{})
		return
	}
	id, ok, err := h.Notices.PopShipped(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		id = ""
	}
	writeJSON(w, http.StatusOK, notificationsResp{ShippedOrderID: id})
}
