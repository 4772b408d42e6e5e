// Package session resolves who is using the shop and which order
// transitions they are offered.
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/ariefcatur/go-watch-orders/internal/orders"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Store is what the gate needs from the state store.
type Store interface {
	Session(ctx context.Context) orders.Session
	SetSession(ctx context.Context, s orders.Session) error
	User(ctx context.Context, id string) (orders.User, error)
	UserByEmail(ctx context.Context, email string) (orders.User, error)
	InsertUser(ctx context.Context, u orders.User, login bool) error
	UpdateUser(ctx context.Context, id string, fn func(*orders.User) error) (orders.User, error)
}

// Credentials is the single configured admin login.
type Credentials struct {
	Email    string
	Password string
}

type Gate struct {
	Store Store
	Admin Credentials
	Cost  int // bcrypt cost, bcrypt.DefaultCost when zero
}

type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Login checks the admin constant first, then the user collection, and
// persists the resolved session.
func (g *Gate) Login(ctx context.Context, email, secret string) (orders.Actor, error) {
	email = normalizeEmail(email)
	if g.isAdmin(email, secret) {
		sess := orders.Session{Role: orders.RoleAdmin, UserID: orders.AdminID}
		if err := g.Store.SetSession(ctx, sess); err != nil {
			return orders.Actor{}, err
		}
		return sess.Actor(), nil
	}

	u, err := g.Store.UserByEmail(ctx, email)
	if errors.Is(err, orders.ErrNotFound) {
		return orders.Actor{}, orders.ErrInvalidCredentials
	}
	if err != nil {
		return orders.Actor{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(secret)) != nil {
		return orders.Actor{}, orders.ErrInvalidCredentials
	}
	sess := orders.Session{Role: u.Role, UserID: u.ID}
	if err := g.Store.SetSession(ctx, sess); err != nil {
		return orders.Actor{}, err
	}
	return sess.Actor(), nil
}

func (g *Gate) isAdmin(email, secret string) bool {
	if g.Admin.Email == "" || g.Admin.Password == "" {
		return false
	}
	okEmail := subtle.ConstantTimeCompare([]byte(email), []byte(normalizeEmail(g.Admin.Email))) == 1
	okPass := subtle.ConstantTimeCompare([]byte(secret), []byte(g.Admin.Password)) == 1
	return okEmail && okPass
}

// Signup registers a customer and logs them in. A taken email fails with
// ErrDuplicateIdentity and leaves the user collection as it was.
func (g *Gate) Signup(ctx context.Context, in SignupInput) (orders.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return orders.User{}, fmt.Errorf("%w: invalid email", orders.ErrInvalidInput)
	}
	if in.Password == "" || strings.TrimSpace(in.Name) == "" {
		return orders.User{}, fmt.Errorf("%w: name and password are required", orders.ErrInvalidInput)
	}
	if strings.EqualFold(email, g.Admin.Email) {
		return orders.User{}, fmt.Errorf("%s: %w", email, orders.ErrDuplicateIdentity)
	}

	cost := g.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cost)
	if err != nil {
		return orders.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := orders.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		Role:         orders.RoleCustomer,
	}
	if err := g.Store.InsertUser(ctx, u, true); err != nil {
		return orders.User{}, err
	}
	return u, nil
}

func (g *Gate) Logout(ctx context.Context) error {
	return g.Store.SetSession(ctx, orders.Session{})
}

// Current resolves the persisted session. The user is nil for the admin and
// for anonymous visitors. A session pointing at a vanished user is treated as
// anonymous.
func (g *Gate) Current(ctx context.Context) (orders.Actor, *orders.User) {
	sess := g.Store.Session(ctx)
	switch sess.Role {
	case orders.RoleAdmin:
		return orders.AdminActor(), nil
	case orders.RoleCustomer:
		u, err := g.Store.User(ctx, sess.UserID)
		if err != nil {
			return orders.Actor{}, nil
		}
		return sess.Actor(), &u
	}
	return orders.Actor{}, nil
}

// UpdateProfile edits the current customer's contact data. Orders placed
// earlier keep the shipping snapshot they were placed with.
func (g *Gate) UpdateProfile(ctx context.Context, name, phone, address string) (orders.User, error) {
	actor, u := g.Current(ctx)
	if actor.Role != orders.RoleCustomer || u == nil {
		return orders.User{}, fmt.Errorf("update profile: %w", orders.ErrForbidden)
	}
	if strings.TrimSpace(name) == "" {
		return orders.User{}, fmt.Errorf("%w: name is required", orders.ErrInvalidInput)
	}
	return g.Store.UpdateUser(ctx, u.ID, func(u *orders.User) error {
		u.Name = strings.TrimSpace(name)
		u.Phone = strings.TrimSpace(phone)
		u.Address = strings.TrimSpace(address)
		return nil
	})
}

// Capabilities is the UI filter: what actor may do to o right now.
func Capabilities(actor orders.Actor, o orders.Order) []orders.Transition {
	return orders.Allowed(actor, o)
}

// RequireAdmin fails unless actor is the admin.
func RequireAdmin(actor orders.Actor) error {
	if actor.Role != orders.RoleAdmin {
		return fmt.Errorf("admin only: %w", orders.ErrForbidden)
	}
	return nil
}

// RequireCustomer fails unless actor is a logged-in customer.
func RequireCustomer(actor orders.Actor) error {
	if actor.Role != orders.RoleCustomer || actor.UserID == "" {
		return fmt.Errorf("customer only: %w", orders.ErrForbidden)
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
