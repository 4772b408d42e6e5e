package redisx

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-watch-orders/internal/store"
	"github.com/redis/go-redis/v9"
)

var _ store.Backend = (*SnapshotBackend)(nil)

// SnapshotBackend keeps one Redis string per snapshot slot. Save sends all
// slots in one MULTI/EXEC so a crash never leaves half a snapshot behind.
type SnapshotBackend struct {
	RDB    *redis.Client
	Prefix string
}

func (b *SnapshotBackend) key(slot string) string {
	prefix := b.Prefix
	if prefix == "" {
		prefix = DefaultSlotPrefix
	}
	return fmt.Sprintf(KeySlot, prefix, slot)
}

func (b *SnapshotBackend) Load(ctx context.Context, slots []string) (map[string][]byte, error) {
	keys := make([]string, 0, len(slots))
	for _, s := range slots {
		keys = append(keys, b.key(s))
	}
	vals, err := b.RDB.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	out := make(map[string][]byte, len(slots))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue // never written
		}
		out[slots[i]] = []byte(s)
	}
	return out, nil
}

func (b *SnapshotBackend) Save(ctx context.Context, slots map[string][]byte) error {
	_, err := b.RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for slot, v := range slots {
			p.Set(ctx, b.key(slot), v, 0)
		}
		return nil
	})
	return err
}
