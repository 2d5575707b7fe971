// Package cart implements the client-side grocery cart. The cart never
// talks to the API itself: callers hand it ingredient snapshots, and the
// cart tracks quantities and money locally, persisting after every
// mutation through a Store.
package cart

import (
	"fmt"

	"github.com/google/uuid"
)

// TaxRate is the GST applied on top of the subtotal.
const TaxRate = 0.18

// LineItem is one cart entry. Name, unit and price are snapshots taken
// when the item was first added; a later catalog price change does not
// reprice lines already in the cart.
type LineItem struct {
	IngredientID uuid.UUID `json:"ingredientId"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	PricePerUnit float64   `json:"pricePerUnit"`
	Quantity     int       `json:"quantity"`
}

// Totals is the money summary of a cart.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	Tax       float64 `json:"tax"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"itemCount"`
}

// Cart holds line items in insertion order and writes itself to its
// store after every mutation.
type Cart struct {
	store Store
	items []LineItem
}

// New loads the persisted cart from the store, starting empty when the
// store has nothing yet.
func New(store Store) (*Cart, error) {
	items, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &Cart{store: store, items: items}, nil
}

// Items returns a copy of the current line items.
func (c *Cart) Items() []LineItem {
	items := make([]LineItem, len(c.items))
	copy(items, c.items)
	return items
}

// AddItem adds quantity units of the snapshotted ingredient. Adding an
// ingredient already in the cart merges into the existing line; the
// original snapshot wins.
func (c *Cart) AddItem(item LineItem, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}

	if i := c.indexOf(item.IngredientID); i >= 0 {
		c.items[i].Quantity += quantity
	} else {
		item.Quantity = quantity
		c.items = append(c.items, item)
	}

	return c.save()
}

// RemoveItem drops the line for the ingredient. Removing an ingredient
// that is not in the cart is a no-op.
func (c *Cart) RemoveItem(ingredientID uuid.UUID) error {
	i := c.indexOf(ingredientID)
	if i < 0 {
		return nil
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return c.save()
}

// SetQuantity replaces the quantity of an existing line. A quantity of
// zero or less removes the line.
func (c *Cart) SetQuantity(ingredientID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(ingredientID)
	}
	i := c.indexOf(ingredientID)
	if i < 0 {
		return fmt.Errorf("ingredient %s is not in the cart", ingredientID)
	}
	c.items[i].Quantity = quantity
	return c.save()
}

// Increment bumps the quantity of an existing line by one.
func (c *Cart) Increment(ingredientID uuid.UUID) error {
	i := c.indexOf(ingredientID)
	if i < 0 {
		return fmt.Errorf("ingredient %s is not in the cart", ingredientID)
	}
	c.items[i].Quantity++
	return c.save()
}

// Decrement lowers the quantity of a line by one, removing the line when
// it reaches zero. Decrementing an absent ingredient is a no-op.
func (c *Cart) Decrement(ingredientID uuid.UUID) error {
	i := c.indexOf(ingredientID)
	if i < 0 {
		return nil
	}
	c.items[i].Quantity--
	if c.items[i].Quantity <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	return c.save()
}

// Clear empties the cart.
func (c *Cart) Clear() error {
	c.items = nil
	return c.save()
}

// Totals sums the cart: subtotal over all lines, GST on top, and the
// total number of units across lines.
func (c *Cart) Totals() Totals {
	var t Totals
	for _, item := range c.items {
		t.Subtotal += item.PricePerUnit * float64(item.Quantity)
		t.ItemCount += item.Quantity
	}
	t.Tax = t.Subtotal * TaxRate
	t.Total = t.Subtotal + t.Tax
	return t
}

func (c *Cart) indexOf(ingredientID uuid.UUID) int {
	for i := range c.items {
		if c.items[i].IngredientID == ingredientID {
			return i
		}
	}
	return -1
}

func (c *Cart) save() error {
	if err := c.store.Save(c.items); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
