// Package store holds every entity collection of the shop and writes a full
// snapshot to its Backend after each accepted mutation.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ariefcatur/go-watch-orders/internal/orders"
)

// Slot names of the durable snapshot.
const (
	SlotSession  = "current_user"
	SlotUsers    = "users"
	SlotProducts = "products"
	SlotOrders   = "orders"
	SlotOffers   = "offers"
	SlotChats    = "chats"
	SlotBkash    = "bkash"
	SlotNagad    = "nagad"
)

var slotKeys = []string{SlotSession, SlotUsers, SlotProducts, SlotOrders, SlotOffers, SlotChats, SlotBkash, SlotNagad}

// State is the whole shop. Store.Update hands callers a private copy.
type State struct {
	Session  orders.Session
	Users    []orders.User
	Products []orders.Product
	Orders   []orders.Order
	Offers   []orders.Offer
	Messages []orders.ChatMessage
	Merchant orders.MerchantNumbers
}

func (s State) clone() State {
	out := State{
		Session:  s.Session,
		Users:    copyOf(s.Users),
		Products: make([]orders.Product, len(s.Products)),
		Orders:   make([]orders.Order, len(s.Orders)),
		Offers:   copyOf(s.Offers),
		Messages: copyOf(s.Messages),
		Merchant: s.Merchant,
	}
	for i, p := range s.Products {
		out.Products[i] = p.Clone()
	}
	for i, o := range s.Orders {
		out.Orders[i] = o.Clone()
	}
	return out
}

var _ orders.Repository = (*Store)(nil)

type Store struct {
	mu      sync.Mutex
	state   State
	backend Backend
}

// Open restores the last snapshot from b. Slots that were never written fall
// back to seed; a slot that exists but cannot be decoded is an error.
func Open(ctx context.Context, b Backend, seed Seed) (*Store, error) {
	raw, err := b.Load(ctx, slotKeys)
	if err != nil {
		return nil, fmt.Errorf("store: load snapshot: %w", err)
	}

	st := State{
		Products: seed.products(),
		Offers:   seed.offers(),
		Merchant: orders.MerchantNumbers{Bkash: seed.Merchant.Bkash, Nagad: seed.Merchant.Nagad},
	}
	decoders := []struct {
		key string
		dst any
	}{
		{SlotSession, &st.Session},
		{SlotUsers, &st.Users},
		{SlotProducts, &st.Products},
		{SlotOrders, &st.Orders},
		{SlotOffers, &st.Offers},
		{SlotChats, &st.Messages},
	}
	for _, d := range decoders {
		v, ok := raw[d.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, d.dst); err != nil {
			return nil, fmt.Errorf("store: decode slot %s: %w", d.key, err)
		}
	}
	for _, o := range st.Orders {
		if !o.Status.Valid() {
			return nil, fmt.Errorf("store: decode slot %s: order %s has status %q", SlotOrders, o.ID, o.Status)
		}
	}
	if v, ok := raw[SlotBkash]; ok {
		st.Merchant.Bkash = string(v)
	}
	if v, ok := raw[SlotNagad]; ok {
		st.Merchant.Nagad = string(v)
	}

	return &Store{state: st, backend: b}, nil
}

// Update applies fn to a copy of the state, persists the complete snapshot
// and only then makes the copy current. An error from fn or from the backend
// leaves the store exactly as it was.
func (s *Store) Update(ctx context.Context, fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(&next); err != nil {
		return err
	}
	slots, err := encode(next)
	if err != nil {
		return fmt.Errorf("%w: %w", orders.ErrPersistence, err)
	}
	if err := s.backend.Save(ctx, slots); err != nil {
		return fmt.Errorf("%w: %w", orders.ErrPersistence, err)
	}
	s.state = next
	return nil
}

func (s *Store) view(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Snapshot returns a copy of the entire state.
func (s *Store) Snapshot() State {
	var out State
	s.view(func(st *State) { out = st.clone() })
	return out
}

func encode(st State) (map[string][]byte, error) {
	slots := make(map[string][]byte, len(slotKeys))
	values := map[string]any{
		SlotSession:  st.Session,
		SlotUsers:    st.Users,
		SlotProducts: st.Products,
		SlotOrders:   st.Orders,
		SlotOffers:   st.Offers,
		SlotChats:    st.Messages,
	}
	for k, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode slot %s: %w", k, err)
		}
		slots[k] = b
	}
	slots[SlotBkash] = []byte(st.Merchant.Bkash)
	slots[SlotNagad] = []byte(st.Merchant.Nagad)
	return slots, nil
}

func copyOf[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// ---- orders ----

func (s *Store) Order(_ context.Context, id string) (orders.Order, error) {
	var (
		out   orders.Order
		found bool
	)
	s.view(func(st *State) {
		if i := indexOrder(st.Orders, id); i >= 0 {
			out, found = st.Orders[i].Clone(), true
		}
	})
	if !found {
		return orders.Order{}, orders.NotFound("order", id)
	}
	return out, nil
}

func (s *Store) Orders(_ context.Context) []orders.Order {
	var out []orders.Order
	s.view(func(st *State) {
		out = make([]orders.Order, 0, len(st.Orders))
		for _, o := range st.Orders {
			out = append(out, o.Clone())
		}
	})
	return out
}

func (s *Store) OrdersByUser(_ context.Context, userID string) []orders.Order {
	var out []orders.Order
	s.view(func(st *State) {
		for _, o := range st.Orders {
			if o.Shipping.UserID == userID {
				out = append(out, o.Clone())
			}
		}
	})
	return out
}

func (s *Store) InsertOrder(ctx context.Context, o orders.Order) error {
	return s.Update(ctx, func(st *State) error {
		if indexOrder(st.Orders, o.ID) >= 0 {
			return fmt.Errorf("order %s: %w", o.ID, orders.ErrDuplicateOrderID)
		}
		st.Orders = append(st.Orders, o.Clone())
		return nil
	})
}

// UpdateOrder runs fn against the stored order under the store lock and
// writes the result back. fn errors abort without touching the record.
func (s *Store) UpdateOrder(ctx context.Context, id string, fn func(*orders.Order) error) (orders.Order, error) {
	var out orders.Order
	err := s.Update(ctx, func(st *State) error {
		i := indexOrder(st.Orders, id)
		if i < 0 {
			return orders.NotFound("order", id)
		}
		o := st.Orders[i].Clone()
		if err := fn(&o); err != nil {
			return err
		}
		o.ID = id
		st.Orders[i] = o
		out = o.Clone()
		return nil
	})
	return out, err
}

func indexOrder(list []orders.Order, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// ---- users & session ----

func (s *Store) Users(_ context.Context) []orders.User {
	var out []orders.User
	s.view(func(st *State) { out = append([]orders.User(nil), st.Users...) })
	return out
}

func (s *Store) User(_ context.Context, id string) (orders.User, error) {
	var (
		out   orders.User
		found bool
	)
	s.view(func(st *State) {
		for _, u := range st.Users {
			if u.ID == id {
				out, found = u, true
				return
			}
		}
	})
	if !found {
		return orders.User{}, orders.NotFound("user", id)
	}
	return out, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (orders.User, error) {
	var (
		out   orders.User
		found bool
	)
	s.view(func(st *State) {
		for _, u := range st.Users {
			if strings.EqualFold(u.Email, email) {
				out, found = u, true
				return
			}
		}
	})
	if !found {
		return orders.User{}, orders.NotFound("user", email)
	}
	return out, nil
}

// InsertUser adds u unless its email is taken. When login is true the new
// user also becomes the current session in the same snapshot.
func (s *Store) InsertUser(ctx context.Context, u orders.User, login bool) error {
	return s.Update(ctx, func(st *State) error {
		for _, existing := range st.Users {
			if strings.EqualFold(existing.Email, u.Email) {
				return fmt.Errorf("%s: %w", u.Email, orders.ErrDuplicateIdentity)
			}
		}
		st.Users = append(st.Users, u)
		if login {
			st.Session = orders.Session{Role: u.Role, UserID: u.ID}
		}
		return nil
	})
}

func (s *Store) UpdateUser(ctx context.Context, id string, fn func(*orders.User) error) (orders.User, error) {
	var out orders.User
	err := s.Update(ctx, func(st *State) error {
		for i := range st.Users {
			if st.Users[i].ID != id {
				continue
			}
			u := st.Users[i]
			if err := fn(&u); err != nil {
				return err
			}
			u.ID, u.Email, u.Role = id, st.Users[i].Email, st.Users[i].Role
			st.Users[i] = u
			out = u
			return nil
		}
		return orders.NotFound("user", id)
	})
	return out, err
}

func (s *Store) Session(_ context.Context) orders.Session {
	var out orders.Session
	s.view(func(st *State) { out = st.Session })
	return out
}

func (s *Store) SetSession(ctx context.Context, sess orders.Session) error {
	return s.Update(ctx, func(st *State) error {
		st.Session = sess
		return nil
	})
}

// ---- catalog ----

func (s *Store) Products(_ context.Context) []orders.Product {
	var out []orders.Product
	s.view(func(st *State) {
		out = make([]orders.Product, 0, len(st.Products))
		for _, p := range st.Products {
			out = append(out, p.Clone())
		}
	})
	return out
}

func (s *Store) Product(_ context.Context, id string) (orders.Product, error) {
	var (
		out   orders.Product
		found bool
	)
	s.view(func(st *State) {
		for _, p := range st.Products {
			if p.ID == id {
				out, found = p.Clone(), true
				return
			}
		}
	})
	if !found {
		return orders.Product{}, orders.NotFound("product", id)
	}
	return out, nil
}

func (s *Store) AddProduct(ctx context.Context, p orders.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.Update(ctx, func(st *State) error {
		for _, existing := range st.Products {
			if existing.ID == p.ID {
				return fmt.Errorf("%w: product %s already exists", orders.ErrInvalidInput, p.ID)
			}
		}
		st.Products = append(st.Products, p.Clone())
		return nil
	})
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	return s.Update(ctx, func(st *State) error {
		for i, p := range st.Products {
			if p.ID == id {
				st.Products = append(st.Products[:i], st.Products[i+1:]...)
				return nil
			}
		}
		return orders.NotFound("product", id)
	})
}

// ---- offers ----

func (s *Store) Offers(_ context.Context) []orders.Offer {
	var out []orders.Offer
	s.view(func(st *State) { out = append([]orders.Offer(nil), st.Offers...) })
	return out
}

func (s *Store) AddOffer(ctx context.Context, o orders.Offer) error {
	return s.Update(ctx, func(st *State) error {
		st.Offers = append(st.Offers, o)
		return nil
	})
}

func (s *Store) DeleteOffer(ctx context.Context, id string) error {
	return s.Update(ctx, func(st *State) error {
		for i, o := range st.Offers {
			if o.ID == id {
				st.Offers = append(st.Offers[:i], st.Offers[i+1:]...)
				return nil
			}
		}
		return orders.NotFound("offer", id)
	})
}

// ---- chat ----

func (s *Store) Messages(_ context.Context) []orders.ChatMessage {
	var out []orders.ChatMessage
	s.view(func(st *State) { out = append([]orders.ChatMessage(nil), st.Messages...) })
	return out
}

func (s *Store) AppendMessage(ctx context.Context, m orders.ChatMessage) error {
	return s.Update(ctx, func(st *State) error {
		st.Messages = append(st.Messages, m)
		return nil
	})
}

// ---- merchant numbers ----

func (s *Store) MerchantNumbers(_ context.Context) orders.MerchantNumbers {
	var out orders.MerchantNumbers
	s.view(func(st *State) { out = st.Merchant })
	return out
}

func (s *Store) SetMerchantNumbers(ctx context.Context, m orders.MerchantNumbers) error {
	return s.Update(ctx, func(st *State) error {
		st.Merchant = m
		return nil
	})
}
