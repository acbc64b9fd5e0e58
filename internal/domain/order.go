package domain

import "time"

// OrderStatus enumerates fulfilment states.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is an immutable line copied into an order at placement time.
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	Price     int64
}

// LineTotal returns quantity * price.
func (i OrderItem) LineTotal() int64 {
	return int64(i.Quantity) * i.Price
}

// ShippingAddress is the delivery destination of an order.
type ShippingAddress struct {
	FullName string
	Phone    string
	Street   string
	City     string
	State    string
	ZipCode  string
	Country  string
}

// PaymentResult records what the payment provider reported.
type PaymentResult struct {
	ID           string
	Status       string
	UpdateTime   string
	EmailAddress string
}

// Order is a snapshot of a checkout. Items and prices never change after placement.
type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
	ItemsPrice      int64
	TaxPrice        int64
	ShippingPrice   int64
	TotalPrice      int64
	Status          OrderStatus
	IsPaid          bool
	PaidAt          *time.Time
	PaymentResult   *PaymentResult
	IsDelivered     bool
	DeliveredAt     *time.Time
	TrackingNumber  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Reprice recomputes ItemsPrice and TotalPrice from the current lines.
func (o *Order) Reprice() {
	var items int64
	for _, item := range o.Items {
		items += item.LineTotal()
	}
	o.ItemsPrice = items
	o.TotalPrice = items + o.TaxPrice + o.ShippingPrice
}
