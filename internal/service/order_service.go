package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/clock"
	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/events"
	"github.com/spec-kit/storefront-api/internal/repository"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

const defaultOrderPageSize = 10

// OrderService coordinates checkout and fulfilment.
type OrderService struct {
	orders repository.OrderRepository
	clock  clock.Clock
	events publisher
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	OrderRepo  repository.OrderRepository
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// OrderLineInput is one requested line of a new order.
type OrderLineInput struct {
	ProductID string
	Quantity  int
}

// PlaceOrderInput describes a checkout request. Line prices always come from the
// catalog at placement time.
type PlaceOrderInput struct {
	Items           []OrderLineInput
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
	TaxPrice        int64
	ShippingPrice   int64
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &OrderService{
		orders: deps.OrderRepo,
		clock:  clk,
		events: publisher{dispatcher: deps.Dispatcher, logger: deps.Logger},
	}
}

// PlaceOrder checks and decrements stock for every line, stores the order snapshot
// and clears the cart as one unit. No order is created and no stock moves when
// any line fails.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.NewEmptyOrder()
	}
	if input.TaxPrice < 0 || input.ShippingPrice < 0 {
		return nil, apperrors.NewValidationError("prices cannot be negative", nil)
	}
	items, err := mergeLines(input.Items)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
		TaxPrice:        input.TaxPrice,
		ShippingPrice:   input.ShippingPrice,
		Status:          domain.OrderStatusPending,
	}
	if err := s.orders.Place(ctx, order); err != nil {
		var missing *repository.ErrProductNotFound
		var short *repository.InsufficientStockError
		switch {
		case errors.As(err, &missing):
			return nil, apperrors.NewNotFound("product", map[string]any{"product_id": missing.ProductID})
		case errors.As(err, &short):
			return nil, apperrors.NewInsufficientStock(short.ProductID, short.ProductName)
		}
		return nil, err
	}

	s.events.publish(ctx, events.New(events.EventOrderPlaced, userID, order.CreatedAt, events.OrderPlacedPayload{
		OrderID:    order.ID,
		ItemCount:  len(order.Items),
		TotalPrice: order.TotalPrice,
	}))
	return order, nil
}

// mergeLines folds repeated products into one line, keeping first-seen order.
func mergeLines(lines []OrderLineInput) ([]domain.OrderItem, error) {
	index := make(map[string]int, len(lines))
	items := make([]domain.OrderItem, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line.ProductID) == "" {
			return nil, apperrors.NewValidationError("product id is required", map[string]any{"line": i})
		}
		if line.Quantity < 1 {
			return nil, apperrors.NewValidationError("quantity must be at least 1", map[string]any{"line": i})
		}
		if at, ok := index[line.ProductID]; ok {
			items[at].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(items)
		items = append(items, domain.OrderItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return items, nil
}

// ListMine returns the caller's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, userID string, page, limit int) (Page[domain.Order], error) {
	page, limit, offset := window(page, limit, defaultOrderPageSize)
	orders, total, err := s.orders.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return Page[domain.Order]{}, err
	}
	return Page[domain.Order]{Items: orders, Total: total, Page: page, Limit: limit}, nil
}

// ListAll returns every order, newest first.
func (s *OrderService) ListAll(ctx context.Context, page, limit int) (Page[domain.Order], error) {
	page, limit, offset := window(page, limit, defaultOrderPageSize)
	orders, total, err := s.orders.List(ctx, limit, offset)
	if err != nil {
		return Page[domain.Order]{}, err
	}
	return Page[domain.Order]{Items: orders, Total: total, Page: page, Limit: limit}, nil
}

// GetForUser returns an order visible to viewer: its owner or an admin.
func (s *OrderService) GetForUser(ctx context.Context, viewer *domain.User, orderID string) (*domain.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != viewer.ID && !viewer.IsAdmin() {
		return nil, apperrors.NewForbidden("not authorized to view this order")
	}
	return order, nil
}

// Pay records a payment reported by the client. Only the owner can pay.
func (s *OrderService) Pay(ctx context.Context, payer *domain.User, orderID string, result domain.PaymentResult) (*domain.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != payer.ID {
		return nil, apperrors.NewForbidden("not authorized to pay for this order")
	}
	if order.IsPaid {
		return nil, apperrors.NewConflict("order already paid", nil)
	}
	if order.Status == domain.OrderStatusCancelled {
		return nil, apperrors.NewConflict("order is cancelled", nil)
	}

	now := s.clock.Now()
	order.IsPaid = true
	order.PaidAt = &now
	order.PaymentResult = &result
	if order.Status == domain.OrderStatusPending {
		order.Status = domain.OrderStatusProcessing
	}
	if err := s.orders.UpdateFulfilment(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus moves an order to status. Delivered and cancelled orders are final.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, trackingNumber *string) (*domain.Order, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid order status", map[string]any{"status": string(status)})
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusDelivered || order.Status == domain.OrderStatusCancelled {
		return nil, apperrors.NewConflict("order is already "+string(order.Status), nil)
	}

	order.Status = status
	if status == domain.OrderStatusDelivered {
		now := s.clock.Now()
		order.IsDelivered = true
		order.DeliveredAt = &now
	}
	if trackingNumber != nil {
		order.TrackingNumber = strings.TrimSpace(*trackingNumber)
	}
	if err := s.orders.UpdateFulfilment(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) load(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("order", map[string]any{"order_id": orderID})
		}
		return nil, err
	}
	return order, nil
}
