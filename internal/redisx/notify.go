package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Notices stores the "your watch has been shipped" banner. It lives for a
// few seconds and is handed out at most once.
type Notices struct {
	RDB *redis.Client
	TTL time.Duration
}

func (n *Notices) PutShipped(ctx context.Context, userID, orderID string) error {
	ttl := n.TTL
	if ttl <= 0 {
		ttl = TTLShippedNotice
	}
	return n.RDB.Set(ctx, fmt.Sprintf(KeyShippedNotice, userID), orderID, ttl).Err()
}

// PopShipped returns the pending order id for userID and removes it. ok is
// false when nothing is pending or the notice already expired.
func (n *Notices) PopShipped(ctx context.Context, userID string) (orderID string, ok bool, err error) {
	v, err := n.RDB.GetDel(ctx, fmt.Sprintf(KeyShippedNotice, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// MarkSeen records an event id for dedup and reports whether it was new.
func MarkSeen(ctx context.Context, rdb *redis.Client, service, eventID string) (bool, error) {
	return rdb.SetNX(ctx, DedupKey(service, eventID), "1", TTLDedup).Result()
}

func DedupKey(service, eventID string) string { return fmt.Sprintf(KeyDedup, service, eventID) }
