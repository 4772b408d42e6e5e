package orders

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderShipped       = "OrderShipped"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "watch-api"
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// EventSink receives lifecycle events after the store accepted the change.
type EventSink interface {
	Emit(ctx context.Context, topic string, env Envelope) error
}

// ---- payloads ----

type OrderPlacedPayload struct {
	OrderID       string        `json:"order_id"`
	UserID        string        `json:"user_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	BaseTotal     int           `json:"base_total"`
	ItemCount     int           `json:"item_count"`
}

type OrderStatusChangedPayload struct {
	OrderID    string     `json:"order_id"`
	UserID     string     `json:"user_id"`
	Transition Transition `json:"transition"`
	From       Status     `json:"from"`
	To         Status     `json:"to"`
	Version    int        `json:"version"`
}

type OrderShippedPayload struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

func newEnvelope(eventType, producer, orderID string, payload any, now time.Time) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    now.UTC(),
		Producer:      producer,
		CorrelationID: orderID,
		Payload:       b,
	}, nil
}
