package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ariefcatur/go-watch-orders/internal/orders"
	"github.com/ariefcatur/go-watch-orders/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) (*store.Store, *store.MemoryBackend) {
	t.Helper()
	b := store.NewMemoryBackend()
	s, err := store.Open(context.Background(), b, store.DefaultSeed())
	require.NoError(t, err)
	return s, b
}

func sampleOrder(id string) orders.Order {
	return orders.Order{
		ID:             id,
		Shipping:       orders.Shipping{UserID: "u1", Name: "Rahim", Phone: "017", Address: "Dhaka"},
		Items:          []orders.LineItem{{ProductID: "p3", Color: "Brown", Quantity: 2, ProductName: "Classic Heritage", UnitPrice: 8500}},
		Status:         orders.StatusAwaitingAdminCost,
		PaymentMethod:  orders.PaymentCashOnDelivery,
		DeliveryMethod: orders.DeliveryStandard,
		PlacedAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Version:        1,
	}
}

func TestOpenSeedsDefaults(t *testing.T) {
	t.Parallel()
	s, _ := openMemory(t)
	ctx := context.Background()

	assert.Len(t, s.Products(ctx), 3)
	assert.Len(t, s.Offers(ctx), 2)
	assert.Empty(t, s.Users(ctx))
	assert.Empty(t, s.Orders(ctx))
	assert.True(t, s.Session(ctx).Anonymous())
	assert.Equal(t, orders.MerchantNumbers{Bkash: "01712345678", Nagad: "01912345678"}, s.MerchantNumbers(ctx))
}

func TestSnapshotSurvivesRestart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, b := openMemory(t)

	require.NoError(t, s.InsertOrder(ctx, sampleOrder("ORD1234")))
	require.NoError(t, s.InsertUser(ctx, orders.User{ID: "u1", Email: "a@b.c", Role: orders.RoleCustomer}, true))
	require.NoError(t, s.SetMerchantNumbers(ctx, orders.MerchantNumbers{Bkash: "1", Nagad: "2"}))
	require.NoError(t, s.DeleteProduct(ctx, "p1"))

	raw, ok := b.Raw(store.SlotBkash)
	require.True(t, ok)
	assert.Equal(t, "1", string(raw))

	again, err := store.Open(ctx, b, store.DefaultSeed())
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), again.Snapshot())
	assert.Equal(t, orders.Session{Role: orders.RoleCustomer, UserID: "u1"}, again.Session(ctx))
	assert.Len(t, again.Products(ctx), 2)
}

func TestEveryMutationRewritesAllSlots(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, b := openMemory(t)

	require.NoError(t, s.SetSession(ctx, orders.Session{Role: orders.RoleAdmin, UserID: orders.AdminID}))
	for _, key := range []string{store.SlotSession, store.SlotUsers, store.SlotProducts, store.SlotOrders,
		store.SlotOffers, store.SlotChats, store.SlotBkash, store.SlotNagad} {
		_, ok := b.Raw(key)
		assert.True(t, ok, "slot %s not written", key)
	}
}

func TestPersistenceFailureKeepsPreviousState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, b := openMemory(t)
	require.NoError(t, s.InsertOrder(ctx, sampleOrder("ORD1000")))

	b.SaveErr = errors.New("quota exceeded")
	err := s.InsertOrder(ctx, sampleOrder("ORD2000"))
	require.ErrorIs(t, err, orders.ErrPersistence)

	_, err = s.Order(ctx, "ORD2000")
	assert.ErrorIs(t, err, orders.ErrNotFound)
	assert.Len(t, s.Orders(ctx), 1)
}

func TestInsertOrderRejectsDuplicateID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openMemory(t)

	require.NoError(t, s.InsertOrder(ctx, sampleOrder("ORD1111")))
	err := s.InsertOrder(ctx, sampleOrder("ORD1111"))
	assert.ErrorIs(t, err, orders.ErrDuplicateOrderID)
	assert.Len(t, s.Orders(ctx), 1)
}

func TestUpdateOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openMemory(t)
	require.NoError(t, s.InsertOrder(ctx, sampleOrder("ORD4242")))

	t.Run("missing order", func(t *testing.T) {
		_, err := s.UpdateOrder(ctx, "ORD0000", func(*orders.Order) error { return nil })
		assert.ErrorIs(t, err, orders.ErrNotFound)
	})

	t.Run("fn error leaves record", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := s.UpdateOrder(ctx, "ORD4242", func(o *orders.Order) error {
			o.Status = orders.StatusCancelled
			return boom
		})
		assert.ErrorIs(t, err, boom)
		o, err := s.Order(ctx, "ORD4242")
		require.NoError(t, err)
		assert.Equal(t, orders.StatusAwaitingAdminCost, o.Status)
	})

	t.Run("write back", func(t *testing.T) {
		got, err := s.UpdateOrder(ctx, "ORD4242", func(o *orders.Order) error {
			o.PaymentProof = true
			o.ID = "tampered"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ORD4242", got.ID)
		o, err := s.Order(ctx, "ORD4242")
		require.NoError(t, err)
		assert.True(t, o.PaymentProof)
	})
}

func TestReadersGetCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openMemory(t)
	require.NoError(t, s.InsertOrder(ctx, sampleOrder("ORD5555")))

	o, err := s.Order(ctx, "ORD5555")
	require.NoError(t, err)
	o.Items[0].UnitPrice = 1

	p, err := s.Product(ctx, "p1")
	require.NoError(t, err)
	p.Colors[0] = "Pink"

	again, _ := s.Order(ctx, "ORD5555")
	assert.Equal(t, 8500, again.Items[0].UnitPrice)
	p1, _ := s.Product(ctx, "p1")
	assert.Equal(t, "Silver", p1.Colors[0])
}

func TestInsertUserRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openMemory(t)

	require.NoError(t, s.InsertUser(ctx, orders.User{ID: "u1", Email: "rahim@example.com", Role: orders.RoleCustomer}, false))
	err := s.InsertUser(ctx, orders.User{ID: "u2", Email: "Rahim@Example.com", Role: orders.RoleCustomer}, true)
	assert.ErrorIs(t, err, orders.ErrDuplicateIdentity)
	assert.Len(t, s.Users(ctx), 1)
	assert.True(t, s.Session(ctx).Anonymous())
}

func TestUpdateUserKeepsIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openMemory(t)
	require.NoError(t, s.InsertUser(ctx, orders.User{ID: "u1", Email: "a@b.c", Role: orders.RoleCustomer}, false))

	u, err := s.UpdateUser(ctx, "u1", func(u *orders.User) error {
		u.Name = "Karim"
		u.Role = orders.RoleAdmin
		u.Email = "evil@b.c"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Karim", u.Name)
	assert.Equal(t, orders.RoleCustomer, u.Role)
	assert.Equal(t, "a@b.c", u.Email)

	_, err = s.UpdateUser(ctx, "ghost", func(*orders.User) error { return nil })
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestCorruptSlotFailsOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := store.NewMemoryBackend()
	require.NoError(t, b.Save(ctx, map[string][]byte{
		store.SlotOrders: []byte(`[{"id":"ORD1","status":"Teleported"}]`),
	}))

	_, err := store.Open(ctx, b, store.DefaultSeed())
	assert.Error(t, err)
}

func TestOrderWithoutStatusFailsOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := store.NewMemoryBackend()
	require.NoError(t, b.Save(ctx, map[string][]byte{
		store.SlotOrders: []byte(`[{"id":"ORD1","items":[],"paymentMethod":"Bkash"}]`),
	}))

	_, err := store.Open(ctx, b, store.DefaultSeed())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORD1")
}

func TestCatalogAndOffers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openMemory(t)

	err := s.AddProduct(ctx, orders.Product{ID: "p9", Name: "Kid Dino", Category: orders.CategoryKids, Price: 0, Colors: []string{"Green"}})
	assert.ErrorIs(t, err, orders.ErrInvalidInput)

	require.NoError(t, s.AddProduct(ctx, orders.Product{ID: "p9", Name: "Kid Dino", Category: orders.CategoryKids, Price: 900, Stock: 3, Colors: []string{"Green"}}))
	assert.ErrorIs(t, s.AddProduct(ctx, orders.Product{ID: "p9", Name: "Dup", Category: orders.CategoryKids, Price: 1, Colors: []string{"Red"}}), orders.ErrInvalidInput)
	assert.Len(t, s.Products(ctx), 4)
	assert.ErrorIs(t, s.DeleteProduct(ctx, "nope"), orders.ErrNotFound)

	require.NoError(t, s.AddOffer(ctx, orders.Offer{ID: "off3", Title: "Flash"}))
	require.NoError(t, s.DeleteOffer(ctx, "off1"))
	assert.ErrorIs(t, s.DeleteOffer(ctx, "off1"), orders.ErrNotFound)
	assert.Len(t, s.Offers(ctx), 2)
}

func TestParseSeed(t *testing.T) {
	t.Parallel()

	s, err := store.ParseSeed([]byte(`
products:
  - id: x1
    name: Smart Band
    brand: Mi
    category: Smart
    price: 3000
    stock: 4
    colors: [Black]
merchant:
  bkash: "0100"
`))
	require.NoError(t, err)
	assert.Len(t, s.Products, 1)
	assert.Equal(t, "0100", s.Merchant.Bkash)

	_, err = store.ParseSeed([]byte(`
products:
  - id: x2
    name: Broken
    category: Smart
    price: 10
`))
	assert.ErrorIs(t, err, orders.ErrInvalidInput)
}
