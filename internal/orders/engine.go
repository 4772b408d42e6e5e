package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository is the slice of the state store the engine needs. UpdateOrder
// must run fn against the freshly stored record and write the result back
// atomically; an error from fn leaves the record untouched.
type Repository interface {
	Order(ctx context.Context, id string) (Order, error)
	Product(ctx context.Context, id string) (Product, error)
	InsertOrder(ctx context.Context, o Order) error
	UpdateOrder(ctx context.Context, id string, fn func(*Order) error) (Order, error)
}

// CostInput is what the admin types in when pricing an order.
type CostInput struct {
	VAT            int    `json:"vat"`
	DeliveryCharge int    `json:"deliveryCharge"`
	Note           string `json:"note"`
}

const maxOrderIDAttempts = 16

// MaxCharge caps the VAT and delivery charge the admin may enter, in taka.
const MaxCharge = 1_000_000

// Engine drives Order.Status through the lifecycle. It never keeps an order
// between calls; every transition is validated against the stored record.
type Engine struct {
	Repo     Repository
	Events   EventSink // optional
	Producer string
	Now      func() time.Time
	NewID    func() string // order id source, "ORD" + 4 digits by default
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) newOrderID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return fmt.Sprintf("ORD%d", 1000+rand.IntN(9000))
}

// PlaceOrder snapshots the cart lines and the customer's contact data into a
// new order awaiting the admin's cost. Stock is left as is.
func (e *Engine) PlaceOrder(ctx context.Context, customer User, items []CartItem, payment PaymentMethod, delivery DeliveryMethod) (Order, error) {
	if customer.Role != RoleCustomer || customer.ID == "" {
		return Order{}, fmt.Errorf("place order: %w", ErrForbidden)
	}
	if len(items) == 0 {
		return Order{}, fmt.Errorf("%w: cart is empty", ErrInvalidInput)
	}
	if !payment.Valid() {
		return Order{}, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, payment)
	}
	if !delivery.Valid() {
		return Order{}, fmt.Errorf("%w: unknown delivery method %q", ErrInvalidInput, delivery)
	}

	lines := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return Order{}, fmt.Errorf("%w: invalid qty for product %s", ErrInvalidInput, it.ProductID)
		}
		p, err := e.Repo.Product(ctx, it.ProductID)
		if err != nil {
			return Order{}, err
		}
		if !p.HasColor(it.Color) {
			return Order{}, fmt.Errorf("%w: %s is not offered in %q", ErrInvalidInput, p.Name, it.Color)
		}
		lines = append(lines, LineItem{
			ProductID:   p.ID,
			Color:       it.Color,
			Quantity:    it.Quantity,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			ImageURL:    p.ImageURL,
		})
	}

	now := e.now()
	o := Order{
		Shipping: Shipping{
			UserID:  customer.ID,
			Name:    customer.Name,
			Phone:   customer.Phone,
			Address: customer.Address,
		},
		Items:          lines,
		Status:         StatusAwaitingAdminCost,
		PaymentMethod:  payment,
		DeliveryMethod: delivery,
		PlacedAt:       now,
		Version:        1,
		UpdatedAt:      now,
	}

	var err error
	for i := 0; i <= maxOrderIDAttempts; i++ {
		o.ID = e.newOrderID()
		if i == maxOrderIDAttempts {
			// four digits exhausted or unlucky; widen the id
			o.ID = "ORD" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		}
		err = e.Repo.InsertOrder(ctx, o)
		if !errors.Is(err, ErrDuplicateOrderID) {
			break
		}
	}
	if err != nil {
		return Order{}, err
	}

	e.emit(ctx, TopicOrderPlaced, EventOrderPlaced, o.ID, OrderPlacedPayload{
		OrderID:       o.ID,
		UserID:        customer.ID,
		PaymentMethod: payment,
		BaseTotal:     o.BaseTotal(),
		ItemCount:     len(lines),
	})
	return o, nil
}

func (e *Engine) SubmitCost(ctx context.Context, actor Actor, orderID string, vat, deliveryCharge int, note string) (Order, error) {
	return e.Apply(ctx, actor, orderID, TransitionSubmitCost, CostInput{VAT: vat, DeliveryCharge: deliveryCharge, Note: note})
}

func (e *Engine) Approve(ctx context.Context, actor Actor, orderID string) (Order, error) {
	return e.Apply(ctx, actor, orderID, TransitionApprove, CostInput{})
}

func (e *Engine) Reject(ctx context.Context, actor Actor, orderID string) (Order, error) {
	return e.Apply(ctx, actor, orderID, TransitionReject, CostInput{})
}

func (e *Engine) DeclarePaymentSent(ctx context.Context, actor Actor, orderID string) (Order, error) {
	return e.Apply(ctx, actor, orderID, TransitionDeclarePaymentSent, CostInput{})
}

func (e *Engine) ConfirmPaymentReceived(ctx context.Context, actor Actor, orderID string) (Order, error) {
	return e.Apply(ctx, actor, orderID, TransitionConfirmPaymentReceived, CostInput{})
}

func (e *Engine) MarkShipped(ctx context.Context, actor Actor, orderID string) (Order, error) {
	return e.Apply(ctx, actor, orderID, TransitionMarkShipped, CostInput{})
}

func (e *Engine) ConfirmReceived(ctx context.Context, actor Actor, orderID string) (Order, error) {
	return e.Apply(ctx, actor, orderID, TransitionConfirmReceived, CostInput{})
}

// Apply runs a named transition. cost is only read by submit-cost.
func (e *Engine) Apply(ctx context.Context, actor Actor, orderID string, t Transition, cost CostInput) (Order, error) {
	return e.ApplyExpected(ctx, actor, orderID, t, cost, 0)
}

// ApplyExpected is Apply with an optimistic check: when expectedVersion > 0
// the stored order must still be at that version.
func (e *Engine) ApplyExpected(ctx context.Context, actor Actor, orderID string, t Transition, cost CostInput, expectedVersion int) (Order, error) {
	if !t.Valid() {
		return Order{}, fmt.Errorf("%w: unknown transition %q", ErrInvalidInput, t)
	}
	if t == TransitionSubmitCost {
		if cost.VAT < 0 || cost.DeliveryCharge < 0 {
			return Order{}, fmt.Errorf("%w: vat and delivery charge cannot be negative", ErrInvalidInput)
		}
		if cost.VAT > MaxCharge || cost.DeliveryCharge > MaxCharge {
			return Order{}, fmt.Errorf("%w: vat and delivery charge cannot exceed %d", ErrInvalidInput, MaxCharge)
		}
	}

	var from Status
	o, err := e.Repo.UpdateOrder(ctx, orderID, func(o *Order) error {
		if err := authorize(actor, *o, t); err != nil {
			return err
		}
		if expectedVersion > 0 && o.Version != expectedVersion {
			return fmt.Errorf("order %s at version %d, expected %d: %w", o.ID, o.Version, expectedVersion, ErrVersionConflict)
		}
		to := t.target(*o)
		if o.Status != t.From() || !CanTransition(o.Status, to) {
			return &InvalidTransitionError{OrderID: o.ID, Current: o.Status, Attempted: t}
		}
		from = o.Status

		switch t {
		case TransitionSubmitCost:
			base := o.BaseTotal()
			o.Cost = &Cost{
				BaseTotal:      base,
				VAT:            cost.VAT,
				DeliveryCharge: cost.DeliveryCharge,
				GrandTotal:     base + cost.DeliveryCharge, // VAT is shown as included
				AdminNote:      cost.Note,
			}
		case TransitionDeclarePaymentSent:
			o.PaymentProof = true
		}

		o.Status = to
		o.Version++
		o.UpdatedAt = e.now()
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	e.emit(ctx, TopicOrderStatusChanged, EventOrderStatusChanged, o.ID, OrderStatusChangedPayload{
		OrderID:    o.ID,
		UserID:     o.Shipping.UserID,
		Transition: t,
		From:       from,
		To:         o.Status,
		Version:    o.Version,
	})
	if t == TransitionMarkShipped {
		e.emit(ctx, TopicOrderShipped, EventOrderShipped, o.ID, OrderShippedPayload{OrderID: o.ID, UserID: o.Shipping.UserID})
	}
	return o, nil
}

// Allowed lists the transitions actor may trigger on o right now.
func (e *Engine) Allowed(actor Actor, o Order) []Transition {
	return Allowed(actor, o)
}

func Allowed(actor Actor, o Order) []Transition {
	var out []Transition
	for _, t := range Transitions() {
		if o.Status == t.From() && authorize(actor, o, t) == nil {
			out = append(out, t)
		}
	}
	return out
}

func authorize(actor Actor, o Order, t Transition) error {
	if actor.Role != t.Actor() {
		return fmt.Errorf("%s on order %s requires %s: %w", t, o.ID, t.Actor(), ErrForbidden)
	}
	if actor.Role == RoleCustomer && o.Shipping.UserID != actor.UserID {
		return fmt.Errorf("order %s belongs to another customer: %w", o.ID, ErrForbidden)
	}
	return nil
}

func (e *Engine) emit(ctx context.Context, topic, eventType, orderID string, payload any) {
	if e.Events == nil {
		return
	}
	env, err := newEnvelope(eventType, e.Producer, orderID, payload, e.now())
	if err != nil {
		log.Printf("encode %s for %s: %v", eventType, orderID, err)
		return
	}
	if err := e.Events.Emit(ctx, topic, env); err != nil {
		log.Printf("emit %s for %s: %v", eventType, orderID, err)
	}
}
