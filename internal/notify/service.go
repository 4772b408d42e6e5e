package notify

import (
	"context"
	"log"

	kafkax "github.com/ariefcatur/go-watch-orders/internal/kafka"
	"github.com/ariefcatur/go-watch-orders/internal/orders"
	"github.com/ariefcatur/go-watch-orders/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Service turns OrderShipped events into the one-shot shipped banner the
// customer sees on their next visit.
type Service struct {
	Redis       *redis.Client
	Notices     *redisx.Notices
	ServiceName string
}

// HandleOrderShipped is installed as the consumer handler.
func (s *Service) HandleOrderShipped(ctx context.Context, m kafkago.Message) error {
	env, err := kafkax.DecodeEnvelope(m.Value)
	if err != nil {
		return err
	}
	if env.EventType != orders.EventOrderShipped {
		return nil // ignore
	}

	p, err := kafkax.UnwrapPayload[orders.OrderShippedPayload](env.Payload)
	if err != nil {
		return err
	}

	fresh, err := redisx.MarkSeen(ctx, s.Redis, s.ServiceName, env.EventID)
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}

	if err := s.Notices.PutShipped(ctx, p.UserID, p.OrderID); err != nil {
		// clear the mark so the consumer's next attempt can queue the banner
		_ = s.Redis.Del(ctx, redisx.DedupKey(s.ServiceName, env.EventID)).Err()
		return err
	}
	log.Printf("shipped notice queued order=%s user=%s", p.OrderID, p.UserID)
	return nil
}
