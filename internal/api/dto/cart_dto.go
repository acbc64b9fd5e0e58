package dto

import (
	"time"

	"github.com/spec-kit/storefront-api/internal/domain"
)

// AddCartItemRequest payload for POST /api/cart/items.
type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=1000"`
}

// UpdateCartItemRequest payload for PUT /api/cart/items/:productId.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=1000"`
}

// CartItemResponse is one cart line.
type CartItemResponse struct {
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Price     int64     `json:"price"`
	LineTotal int64     `json:"lineTotal"`
	AddedAt   time.Time `json:"addedAt"`
}

// CartResponse is the wire form of a cart.
type CartResponse struct {
	UserID    string             `json:"userId"`
	Items     []CartItemResponse `json:"items"`
	ItemCount int                `json:"itemCount"`
	Subtotal  int64              `json:"subtotal"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// NewCartResponse builds the wire form of cart.
func NewCartResponse(cart *domain.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, CartItemResponse{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			Price:     item.Price,
			LineTotal: int64(item.Quantity) * item.Price,
			AddedAt:   item.AddedAt,
		})
	}
	return CartResponse{
		UserID:    cart.UserID,
		Items:     items,
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
		UpdatedAt: cart.UpdatedAt,
	}
}
