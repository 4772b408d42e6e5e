package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-watch-orders/internal/orders"
	"github.com/ariefcatur/go-watch-orders/internal/session"
)

type sessionResp struct {
	Role   orders.Role  `json:"role,omitempty"`
	UserID string       `json:"userId,omitempty"`
	User   *orders.User `json:"user,omitempty"`
}

func (h *Handler) currentSession(r *http.Request) sessionResp {
	actor, u := h.Gate.Current(r.Context())
	if u != nil {
		u.PasswordHash = ""
	}
	return sessionResp{Role: actor.Role, UserID: actor.UserID, User: u}
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.currentSession(r))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req session.Credentials
	if !decode(r, &req, false) {
		badJSON(w)
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	if _, err := h.Gate.Login(ctx, req.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.currentSession(r))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := h.Gate.Logout(ctx); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req session.SignupInput
	if !decode(r, &req, false) {
		badJSON(w)
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	u, err := h.Gate.Signup(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}
	u.PasswordHash = ""
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	actor, _ := h.Gate.Current(r.Context())
	if err := session.RequireAdmin(actor); err != nil {
		writeError(w, err)
		return
	}
	users := h.Store.Users(r.Context())
	for i := range users {
		users[i].PasswordHash = ""
	}
	writeJSON(w, http.StatusOK, users)
}

type profileReq struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileReq
	if !decode(r, &req, false) {
		badJSON(w)
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	u, err := h.Gate.UpdateProfile(ctx, req.Name, req.Phone, req.Address)
	if err != nil {
		writeError(w, err)
		return
	}
	u.PasswordHash = ""
	writeJSON(w, http.StatusOK, u)
}
