package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/ariefcatur/go-watch-orders/internal/orders"
	"github.com/segmentio/kafka-go"
)

var _ orders.EventSink = (*Sink)(nil)

// Sink publishes lifecycle envelopes through a Producer, keyed by order id.
type Sink struct{ Producer *Producer }

func (s *Sink) Emit(ctx context.Context, topic string, env orders.Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.Producer.Publish(ctx, topic, orders.PartitionKey(env.CorrelationID), b,
		kafka.Header{Key: "x-event-type", Value: []byte(env.EventType)},
		kafka.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(env.EventVersion))},
	)
}
