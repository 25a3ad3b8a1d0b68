package cart

import (
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/technova/internal/catalog"
)

type LineItem struct {
	catalog.Product `bson:"product"`
	Quantity        int `json:"quantity" bson:"quantity"`
}

// Subtotal is price times quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered list of line items. Every operation is total: indices
// outside the list leave the cart unchanged.
type Cart struct {
	Items []LineItem `json:"items"`
}

// Add merges a non-custom product into the line with the same id and
// selected model, or appends a new line. Custom products always get a line
// of their own.
func (c *Cart) Add(p catalog.Product) {
	if !p.IsCustom {
		for i := range c.Items {
			item := &c.Items[i]
			if !item.IsCustom && item.ID == p.ID && item.SelectedModel == p.SelectedModel {
				item.Quantity++
				return
			}
		}
	}

	c.Items = append(c.Items, LineItem{Product: p, Quantity: 1})
}

func (c *Cart) Remove(index int) bool {
	if index < 0 || index >= len(c.Items) {
		return false
	}

	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	return true
}

// UpdateQuantity adds delta to the line's quantity. A result of zero or less
// removes the line.
func (c *Cart) UpdateQuantity(index, delta int) bool {
	if index < 0 || index >= len(c.Items) {
		return false
	}

	next := c.Items[index].Quantity + delta
	if next <= 0 {
		return c.Remove(index)
	}
	c.Items[index].Quantity = next

	return true
}

func (c *Cart) Clear() {
	c.Items = []LineItem{}
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
