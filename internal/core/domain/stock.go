package domain

// Stock is the available inventory for a product as reported by the catalog.
// The cart reads it but never owns it.
type Stock struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

// Covers reports whether the stock can satisfy a cart line of the given amount.
func (s Stock) Covers(amount int) bool {
	return s.Amount >= amount
}
