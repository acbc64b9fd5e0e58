package dto

import (
	"time"

	"github.com/spec-kit/storefront-api/internal/domain"
)

// OrderLineRequest is one requested order line.
type OrderLineRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=1000"`
}

// ShippingAddressDTO is the wire form of a delivery address.
type ShippingAddressDTO struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Street   string `json:"address" validate:"required,max=200"`
	City     string `json:"city" validate:"required,max=100"`
	State    string `json:"state" validate:"max=100"`
	ZipCode  string `json:"postalCode" validate:"required,max=12"`
	Country  string `json:"country" validate:"required,max=100"`
}

// PlaceOrderRequest payload for POST /api/orders. Line prices are ignored if
// sent; the catalog price at placement is used.
type PlaceOrderRequest struct {
	OrderItems      []OrderLineRequest `json:"orderItems" validate:"dive"`
	ShippingAddress ShippingAddressDTO `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod" validate:"required,max=50"`
	TaxPrice        int64              `json:"taxPrice" validate:"min=0"`
	ShippingPrice   int64              `json:"shippingPrice" validate:"min=0"`
}

// PayOrderRequest carries the provider's payment result.
type PayOrderRequest struct {
	ID           string `json:"id" validate:"required"`
	Status       string `json:"status" validate:"required"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address" validate:"omitempty,email"`
}

// UpdateOrderStatusRequest payload for the admin status route.
type UpdateOrderStatusRequest struct {
	Status         string  `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
	TrackingNumber *string `json:"trackingNumber" validate:"omitempty,max=100"`
}

// OrderItemResponse is one order line.
type OrderItemResponse struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// PaymentResultResponse is the stored payment result.
type PaymentResultResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

// OrderResponse is the wire form of an order.
type OrderResponse struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"userId"`
	OrderItems      []OrderItemResponse    `json:"orderItems"`
	ShippingAddress ShippingAddressDTO     `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	PaymentResult   *PaymentResultResponse `json:"paymentResult,omitempty"`
	ItemsPrice      int64                  `json:"itemsPrice"`
	TaxPrice        int64                  `json:"taxPrice"`
	ShippingPrice   int64                  `json:"shippingPrice"`
	TotalPrice      int64                  `json:"totalPrice"`
	Status          string                 `json:"status"`
	IsPaid          bool                   `json:"isPaid"`
	PaidAt          *time.Time             `json:"paidAt,omitempty"`
	IsDelivered     bool                   `json:"isDelivered"`
	DeliveredAt     *time.Time             `json:"deliveredAt,omitempty"`
	TrackingNumber  string                 `json:"trackingNumber,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
}

// ToDomain converts the address.
func (a ShippingAddressDTO) ToDomain() domain.ShippingAddress {
	return domain.ShippingAddress{
		FullName: a.FullName,
		Phone:    a.Phone,
		Street:   a.Street,
		City:     a.City,
		State:    a.State,
		ZipCode:  a.ZipCode,
		Country:  a.Country,
	}
}

// NewOrderResponse builds the wire form of order.
func NewOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	resp := OrderResponse{
		ID:         order.ID,
		UserID:     order.UserID,
		OrderItems: items,
		ShippingAddress: ShippingAddressDTO{
			FullName: order.ShippingAddress.FullName,
			Phone:    order.ShippingAddress.Phone,
			Street:   order.ShippingAddress.Street,
			City:     order.ShippingAddress.City,
			State:    order.ShippingAddress.State,
			ZipCode:  order.ShippingAddress.ZipCode,
			Country:  order.ShippingAddress.Country,
		},
		PaymentMethod:  order.PaymentMethod,
		ItemsPrice:     order.ItemsPrice,
		TaxPrice:       order.TaxPrice,
		ShippingPrice:  order.ShippingPrice,
		TotalPrice:     order.TotalPrice,
		Status:         string(order.Status),
		IsPaid:         order.IsPaid,
		PaidAt:         order.PaidAt,
		IsDelivered:    order.IsDelivered,
		DeliveredAt:    order.DeliveredAt,
		TrackingNumber: order.TrackingNumber,
		CreatedAt:      order.CreatedAt,
	}
	if order.PaymentResult != nil {
		resp.PaymentResult = &PaymentResultResponse{
			ID:           order.PaymentResult.ID,
			Status:       order.PaymentResult.Status,
			UpdateTime:   order.PaymentResult.UpdateTime,
			EmailAddress: order.PaymentResult.EmailAddress,
		}
	}
	return resp
}

// NewOrderResponses maps a slice.
func NewOrderResponses(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}
