package domain

// Product is a catalog product. Amount is only set for cart entries and
// holds the quantity currently in the cart.
type Product struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	Image  string  `json:"image"`
	Amount int     `json:"amount,omitempty"`
}

// Subtotal is the line total for a cart entry.
func (p Product) Subtotal() float64 {
	return p.Price * float64(p.Amount)
}
