package dto

import (
	"time"

	"github.com/spec-kit/storefront-api/internal/domain"
)

// CreateProductRequest payload for POST /api/products.
type CreateProductRequest struct {
	Name              string `json:"name" validate:"required,max=200"`
	Description       string `json:"description" validate:"max=5000"`
	SKU               string `json:"sku" validate:"required,max=64"`
	Price             int64  `json:"price" validate:"min=0"`
	Quantity          int    `json:"quantity" validate:"min=0"`
	TrackQuantity     *bool  `json:"trackQuantity"`
	LowStockThreshold int    `json:"lowStockThreshold" validate:"min=0"`
	IsActive          *bool  `json:"isActive"`
}

// UpdateProductRequest payload for PUT /api/products/:id.
type UpdateProductRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description       *string `json:"description" validate:"omitempty,max=5000"`
	SKU               *string `json:"sku" validate:"omitempty,min=1,max=64"`
	Price             *int64  `json:"price" validate:"omitempty,min=0"`
	Quantity          *int    `json:"quantity" validate:"omitempty,min=0"`
	TrackQuantity     *bool   `json:"trackQuantity"`
	LowStockThreshold *int    `json:"lowStockThreshold" validate:"omitempty,min=0"`
	IsActive          *bool   `json:"isActive"`
}

// InventoryResponse is the wire form of product stock.
type InventoryResponse struct {
	Quantity          int  `json:"quantity"`
	TrackQuantity     bool `json:"trackQuantity"`
	LowStockThreshold int  `json:"lowStockThreshold"`
}

// ProductResponse is the wire form of a product.
type ProductResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	SKU         string            `json:"sku"`
	Price       int64             `json:"price"`
	Inventory   InventoryResponse `json:"inventory"`
	InStock     bool              `json:"inStock"`
	IsActive    bool              `json:"isActive"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// NewProductResponse builds the wire form of product.
func NewProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		SKU:         p.SKU,
		Price:       p.Price,
		Inventory: InventoryResponse{
			Quantity:          p.Inventory.Quantity,
			TrackQuantity:     p.Inventory.TrackQuantity,
			LowStockThreshold: p.Inventory.LowStockThreshold,
		},
		InStock:   p.HasStock(1),
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// NewProductResponses maps a slice.
func NewProductResponses(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductResponse(&products[i]))
	}
	return out
}

// ProductListQuery is the query string of GET /api/products.
type ProductListQuery struct {
	Search string `query:"search" validate:"max=100"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
}
