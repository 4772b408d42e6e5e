package redisx_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-watch-orders/internal/orders"
	"github.com/ariefcatur/go-watch-orders/internal/redisx"
	"github.com/ariefcatur/go-watch-orders/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redisx.New(mr.Addr())
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestSnapshotBackendRoundTrip(t *testing.T) {
	t.Parallel()
	mr, rdb := newRedis(t)
	ctx := context.Background()
	b := &redisx.SnapshotBackend{RDB: rdb}

	got, err := b.Load(ctx, []string{"orders", "bkash"})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, b.Save(ctx, map[string][]byte{"orders": []byte(`[]`), "bkash": []byte("017")}))
	v, err := mr.Get("aurax_bkash")
	require.NoError(t, err)
	assert.Equal(t, "017", v)

	got, err = b.Load(ctx, []string{"orders", "bkash", "nagad"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"orders": []byte(`[]`), "bkash": []byte("017")}, got)
}

func TestStoreOverRedisSurvivesRestart(t *testing.T) {
	t.Parallel()
	_, rdb := newRedis(t)
	ctx := context.Background()
	b := &redisx.SnapshotBackend{RDB: rdb, Prefix: "shop_"}

	s, err := store.Open(ctx, b, store.DefaultSeed())
	require.NoError(t, err)
	e := &orders.Engine{Repo: s}
	o, err := e.PlaceOrder(ctx, orders.User{ID: "u1", Name: "Rahim", Role: orders.RoleCustomer},
		[]orders.CartItem{{ProductID: "p2", Color: "Sand", Quantity: 1}}, orders.PaymentNagad, orders.DeliveryStandard)
	require.NoError(t, err)
	_, err = e.SubmitCost(ctx, orders.AdminActor(), o.ID, 0, 120, "")
	require.NoError(t, err)

	again, err := store.Open(ctx, b, store.DefaultSeed())
	require.NoError(t, err)
	stored, err := again.Order(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusAwaitingUserApproval, stored.Status)
	assert.Equal(t, 12120, stored.Cost.GrandTotal)
}

func TestShippedNoticeIsOneShot(t *testing.T) {
	t.Parallel()
	mr, rdb := newRedis(t)
	ctx := context.Background()
	n := &redisx.Notices{RDB: rdb, TTL: 5 * time.Second}

	_, ok, err := n.PopShipped(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, n.PutShipped(ctx, "u1", "ORD1234"))
	id, ok, err := n.PopShipped(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ORD1234", id)

	_, ok, _ = n.PopShipped(ctx, "u1")
	assert.False(t, ok)

	require.NoError(t, n.PutShipped(ctx, "u1", "ORD5678"))
	mr.FastForward(6 * time.Second)
	_, ok, _ = n.PopShipped(ctx, "u1")
	assert.False(t, ok, "notice expires")
}

func TestMarkSeen(t *testing.T) {
	t.Parallel()
	mr, rdb := newRedis(t)
	ctx := context.Background()

	first, err := redisx.MarkSeen(ctx, rdb, "notifier", "ev-1")
	require.NoError(t, err)
	assert.True(t, first)
	again, err := redisx.MarkSeen(ctx, rdb, "notifier", "ev-1")
	require.NoError(t, err)
	assert.False(t, again)

	assert.True(t, mr.Exists(redisx.DedupKey("notifier", "ev-1")))
	assert.False(t, mr.Exists(redisx.DedupKey("other", "ev-1")), "dedup is per service")
}
