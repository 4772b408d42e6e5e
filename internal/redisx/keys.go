package redisx

import "time"

const (
	// Snapshot slot: {prefix}{slot}, e.g. aurax_orders -> JSON array
	KeySlot = "%s%s"

	// One-shot shipped notification: notify:shipped:{user_id} -> order_id
	KeyShippedNotice = "notify:shipped:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

const DefaultSlotPrefix = "aurax_"

var (
	TTLShippedNotice = 5 * time.Second
	TTLDedup         = 48 * time.Hour
)
