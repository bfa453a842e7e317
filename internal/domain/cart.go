package domain

import (
	"math"
	"time"
)

// MaxQuantity is the largest quantity a cart line or order item may hold.
const MaxQuantity = math.MaxInt32

// Cart is the ordered line list owned by a single user.
type Cart struct {
	UserID string     `json:"userId"`
	Lines  []CartLine `json:"items"`
}

// CartLine pairs a product with a positive quantity. Product is populated
// only on reads.
type CartLine struct {
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
	Product   *Product  `json:"product,omitempty"`
}

func (c *Cart) index(productID string) int {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem increments the line for productID or appends a new one.
func (c *Cart) AddItem(productID string, quantity int, now time.Time) error {
	if quantity <= 0 {
		return Invalid("quantity must be positive")
	}
	if quantity > MaxQuantity {
		return Invalid("quantity too large")
	}
	if i := c.index(productID); i >= 0 {
		if c.Lines[i].Quantity > MaxQuantity-quantity {
			return Invalid("quantity too large")
		}
		c.Lines[i].Quantity += quantity
		return nil
	}
	c.Lines = append(c.Lines, CartLine{ProductID: productID, Quantity: quantity, AddedAt: now})
	return nil
}

// SetQuantity overwrites the quantity of an existing line. A non-positive
// quantity removes the line instead.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return nil
	}
	if quantity > MaxQuantity {
		return Invalid("quantity too large")
	}
	i := c.index(productID)
	if i < 0 {
		return ErrNotFound
	}
	c.Lines[i].Quantity = quantity
	return nil
}

// RemoveItem drops the line for productID if present.
func (c *Cart) RemoveItem(productID string) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}

func (c *Cart) Clear() {
	c.Lines = nil
}

// TotalQuantity sums quantities across all lines.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}
