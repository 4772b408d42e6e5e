package orders_test

import (
	"testing"

	"github.com/ariefcatur/go-watch-orders/internal/orders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var watch = orders.Product{ID: "X", Name: "Diver", Brand: "Seiko", Category: orders.CategorySports, Price: 9000, Stock: 10, Colors: []string{"Red", "Blue"}}

func TestCartMergesSameProductAndColor(t *testing.T) {
	t.Parallel()
	var c orders.Cart

	require.NoError(t, c.Add(watch, "Red", 2))
	require.NoError(t, c.Add(watch, "Red", 3))
	require.NoError(t, c.Add(watch, "Blue", 1))

	assert.Equal(t, []orders.CartItem{
		{ProductID: "X", Color: "Red", Quantity: 5},
		{ProductID: "X", Color: "Blue", Quantity: 1},
	}, c.Items)
}

func TestCartAdd(t *testing.T) {
	t.Parallel()

	t.Run("clamps to stock", func(t *testing.T) {
		var c orders.Cart
		require.NoError(t, c.Add(watch, "Red", 40))
		assert.Equal(t, 10, c.Items[0].Quantity)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		var c orders.Cart
		assert.ErrorIs(t, c.Add(watch, "Red", 0), orders.ErrInvalidInput)
		assert.ErrorIs(t, c.Add(watch, "Green", 1), orders.ErrInvalidInput)
		sold := watch
		sold.Stock = 0
		assert.ErrorIs(t, c.Add(sold, "Red", 1), orders.ErrInvalidInput)
		assert.True(t, c.Empty())
	})

	t.Run("remove and clear", func(t *testing.T) {
		var c orders.Cart
		require.NoError(t, c.Add(watch, "Red", 1))
		require.NoError(t, c.Add(watch, "Blue", 1))
		assert.ErrorIs(t, c.Remove(5), orders.ErrNotFound)
		require.NoError(t, c.Remove(0))
		assert.Equal(t, "Blue", c.Items[0].Color)

		snap := c.Snapshot()
		c.Clear()
		assert.True(t, c.Empty())
		assert.Len(t, snap, 1)
	})
}

func TestFilterProducts(t *testing.T) {
	t.Parallel()
	list := []orders.Product{
		{ID: "1", Name: "Royal Oak", Brand: "Audemars Piguet", Category: orders.CategoryLuxury},
		{ID: "2", Name: "Mudmaster", Brand: "Casio", Category: orders.CategorySports},
		{ID: "3", Name: "Heritage", Brand: "Tissot", Category: orders.CategoryFormal},
	}

	ids := func(ps []orders.Product) []string {
		out := []string{}
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids(orders.FilterProducts(list, "", "All")))
	assert.Equal(t, []string{"2"}, ids(orders.FilterProducts(list, "casio", "")))
	assert.Equal(t, []string{"1"}, ids(orders.FilterProducts(list, "OAK", orders.CategoryLuxury)))
	assert.Empty(t, orders.FilterProducts(list, "oak", orders.CategorySports))
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	list := []orders.Order{
		{Status: orders.StatusDelivered, Cost: &orders.Cost{GrandTotal: 17100}},
		{Status: orders.StatusDelivered, Cost: &orders.Cost{GrandTotal: 900}},
		{Status: orders.StatusCancelled, Cost: &orders.Cost{GrandTotal: 5000}},
		{Status: orders.StatusAwaitingAdminCost},
		{Status: orders.StatusPaymentConfirmPending, Cost: &orders.Cost{GrandTotal: 100}},
		{Status: orders.StatusShipped, Cost: &orders.Cost{GrandTotal: 100}},
	}

	assert.Equal(t, orders.Summary{TotalSales: 18000, ActiveOrders: 3, PendingAdmin: 2, Customers: 4}, orders.Summarize(list, 4))
}

func TestMerchantNumbersFor(t *testing.T) {
	t.Parallel()
	m := orders.MerchantNumbers{Bkash: "017", Nagad: "019"}
	assert.Equal(t, "017", m.For(orders.PaymentBkash))
	assert.Equal(t, "019", m.For(orders.PaymentNagad))
	assert.Empty(t, m.For(orders.PaymentCashOnDelivery))
}
