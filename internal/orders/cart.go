package orders

import (
	"fmt"
	"strings"
)

type CartItem struct {
	ProductID string `json:"productId"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

// Cart is the per-session basket. It is never persisted; placing an order
// turns it into line-item snapshots.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Add merges on (product, color). The requested quantity is clamped to the
// stock seen at selection time; an existing line is bumped without re-capping.
func (c *Cart) Add(p Product, color string, qty int) error {
	if qty < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	if !p.HasColor(color) {
		return fmt.Errorf("%w: %s is not offered in %q", ErrInvalidInput, p.Name, color)
	}
	if p.Stock == 0 {
		return fmt.Errorf("%w: %s is out of stock", ErrInvalidInput, p.Name)
	}
	if qty > p.Stock {
		qty = p.Stock
	}
	for i := range c.Items {
		if c.Items[i].ProductID == p.ID && c.Items[i].Color == color {
			c.Items[i].Quantity += qty
			return nil
		}
	}
	c.Items = append(c.Items, CartItem{ProductID: p.ID, Color: color, Quantity: qty})
	return nil
}

func (c *Cart) Remove(index int) error {
	if index < 0 || index >= len(c.Items) {
		return fmt.Errorf("%w: no cart line %d", ErrNotFound, index)
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	return nil
}

func (c *Cart) Clear() { c.Items = nil }

func (c Cart) Empty() bool { return len(c.Items) == 0 }

// Snapshot copies the lines so callers can hand them to PlaceOrder.
func (c Cart) Snapshot() []CartItem {
	return append([]CartItem(nil), c.Items...)
}

// FilterProducts matches query against name or brand, case-insensitively.
// An empty category or "All" matches every category.
func FilterProducts(products []Product, query string, category Category) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if category != "" && category != "All" && p.Category != category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Brand), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}
