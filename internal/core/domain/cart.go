package domain

import (
	"encoding/json"
	"fmt"
)

// Cart is the ordered list of cart entries, in insertion order.
// Product ids are unique and every Amount is positive.
type Cart []Product

// Find returns the index of the entry for productID, or -1.
func (c Cart) Find(productID int) int {
	for i, p := range c {
		if p.ID == productID {
			return i
		}
	}
	return -1
}

// AmountOf returns the quantity of productID held in the cart (0 if absent).
func (c Cart) AmountOf(productID int) int {
	if i := c.Find(productID); i >= 0 {
		return c[i].Amount
	}
	return 0
}

// Clone returns a copy that shares nothing with c.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// TotalItems is the number of distinct products in the cart.
func (c Cart) TotalItems() int {
	return len(c)
}

// Subtotal sums the line totals of all entries.
func (c Cart) Subtotal() float64 {
	var total float64
	for _, p := range c {
		total += p.Subtotal()
	}
	return total
}

// MarshalCart encodes the cart in its persisted form: a JSON array of entries.
// A nil cart is encoded as an empty array.
func MarshalCart(c Cart) ([]byte, error) {
	if c == nil {
		c = Cart{}
	}
	return json.Marshal(c)
}

// UnmarshalCart decodes a persisted cart.
func UnmarshalCart(data []byte) (Cart, error) {
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if c == nil {
		c = Cart{}
	}
	return c, nil
}
