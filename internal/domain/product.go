package domain

import "time"

// Inventory tracks stock for a product.
type Inventory struct {
	Quantity          int
	TrackQuantity     bool
	LowStockThreshold int
}

// Product is the catalog entity consulted by cart and order flows. Prices are
// stored in minor currency units.
type Product struct {
	ID          string
	Name        string
	Description string
	SKU         string
	Price       int64
	Inventory   Inventory
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasStock reports whether quantity units are available. Untracked products
// always have stock.
func (p *Product) HasStock(quantity int) bool {
	return !p.Inventory.TrackQuantity || p.Inventory.Quantity >= quantity
}
