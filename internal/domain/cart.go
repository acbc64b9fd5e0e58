package domain

import "time"

// CartItem is one product line in a cart. Price is captured when the product is
// first added.
type CartItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       int64
	AddedAt     time.Time
}

// Cart belongs to exactly one user and holds at most one line per product.
type Cart struct {
	UserID    string
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemCount sums quantities across lines.
func (c *Cart) ItemCount() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Subtotal sums quantity * captured price across lines.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, item := range c.Items {
		total += int64(item.Quantity) * item.Price
	}
	return total
}
