// Package cart holds the shopper's cart on the client side. Every mutation is
// written through to a Store so the cart survives restarts; nothing here talks
// to the API.
package cart

import (
	"github.com/shopspring/decimal"

	"basket/internal/domain"
)

// Item is a cart line: a snapshot of the product as it was added plus a quantity >= 1.
type Item struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	Price     float64     `json:"price"`
	Image     string      `json:"image"`
	Unit      domain.Unit `json:"unit"`
	Quantity  int         `json:"quantity"`
}

func (it Item) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Pricing decides the delivery surcharge. The fee is waived once the subtotal
// is strictly above FreeAbove.
type Pricing struct {
	Fee       decimal.Decimal
	FreeAbove decimal.Decimal
}

func NewPricing(fee, freeAbove float64) Pricing {
	return Pricing{Fee: decimal.NewFromFloat(fee), FreeAbove: decimal.NewFromFloat(freeAbove)}
}

func DefaultPricing() Pricing { return NewPricing(50, 500) }

// Cart is not safe for concurrent use.
type Cart struct {
	items   []Item
	store   Store
	pricing Pricing
}

// Open rehydrates the cart from store. Lines with a quantity below one are
// dropped and repeated products are folded into a single line.
func Open(store Store, pricing Pricing) (*Cart, error) {
	saved, err := store.Load()
	if err != nil {
		return nil, err
	}
	c := &Cart{store: store, pricing: pricing}
	for _, it := range saved {
		if it.ProductID == "" || it.Quantity < 1 {
			continue
		}
		if i := c.index(it.ProductID); i >= 0 {
			c.items[i].Quantity += it.Quantity
			continue
		}
		c.items = append(c.items, it)
	}
	return c, nil
}

func (c *Cart) index(productID string) int {
	for i, it := range c.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// commit persists next and only then makes it the current state.
func (c *Cart) commit(next []Item) error {
	if err := c.store.Save(next); err != nil {
		return err
	}
	c.items = next
	return nil
}

func (c *Cart) snapshot() []Item {
	return append([]Item(nil), c.items...)
}

// Add appends p at quantity 1, or bumps the quantity when p is already in the cart.
func (c *Cart) Add(p domain.Product) error {
	next := c.snapshot()
	if i := c.index(p.ID); i >= 0 {
		next[i].Quantity++
		return c.commit(next)
	}
	next = append(next, Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Unit:      p.Unit,
		Quantity:  1,
	})
	return c.commit(next)
}

func (c *Cart) Remove(productID string) error {
	i := c.index(productID)
	if i < 0 {
		return nil
	}
	next := c.snapshot()
	next = append(next[:i], next[i+1:]...)
	return c.commit(next)
}

// SetQuantity overwrites the quantity of a line; n < 1 removes it.
func (c *Cart) SetQuantity(productID string, n int) error {
	if n < 1 {
		return c.Remove(productID)
	}
	i := c.index(productID)
	if i < 0 {
		return nil
	}
	next := c.snapshot()
	next[i].Quantity = n
	return c.commit(next)
}

func (c *Cart) Clear() error {
	return c.commit([]Item{})
}

func (c *Cart) Items() []Item { return c.snapshot() }

func (c *Cart) Empty() bool { return len(c.items) == 0 }

func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// DeliveryFee is zero for an empty cart.
func (c *Cart) DeliveryFee() decimal.Decimal {
	if c.Empty() || c.Subtotal().GreaterThan(c.pricing.FreeAbove) {
		return decimal.Zero
	}
	return c.pricing.Fee
}

func (c *Cart) Total() decimal.Decimal {
	return c.Subtotal().Add(c.DeliveryFee())
}

// Lines is the checkout payload: product ids and quantities only.
func (c *Cart) Lines() []domain.OrderLine {
	out := make([]domain.OrderLine, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, domain.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}
