package memory

import (
	"context"

	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/repository"
)

type orderStore struct {
	s *Store
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = make([]domain.OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	if o.PaymentResult != nil {
		pr := *o.PaymentResult
		c.PaymentResult = &pr
	}
	if o.PaidAt != nil {
		t := *o.PaidAt
		c.PaidAt = &t
	}
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		c.DeliveredAt = &t
	}
	return &c
}

func (r *orderStore) Place(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Validate every line before touching stock so a failure leaves nothing behind.
	for _, item := range order.Items {
		product, ok := r.s.products[item.ProductID]
		if !ok || !product.IsActive {
			return &repository.ErrProductNotFound{ProductID: item.ProductID}
		}
		if !product.HasStock(item.Quantity) {
			return &repository.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   item.Quantity,
				Available:   product.Inventory.Quantity,
			}
		}
	}

	now := r.s.clock.Now()
	for i := range order.Items {
		product := r.s.products[order.Items[i].ProductID]
		if product.Inventory.TrackQuantity {
			product.Inventory.Quantity -= order.Items[i].Quantity
			product.UpdatedAt = now
		}
		order.Items[i].Name = product.Name
		order.Items[i].Price = product.Price
	}
	order.Reprice()
	order.ID = newID()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.s.orders[order.ID] = cloneOrder(order)
	r.s.orderOrder = append(r.s.orderOrder, order.ID)

	if cart, ok := r.s.carts[order.UserID]; ok {
		cart.Items = []domain.CartItem{}
		cart.UpdatedAt = now
	}
	return nil
}

func (r *orderStore) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *orderStore) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Order, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for _, id := range r.s.orderOrder {
		if r.s.orders[id].UserID == userID {
			ids = append(ids, id)
		}
	}
	return r.collectLocked(ids, limit, offset), len(ids), nil
}

func (r *orderStore) List(_ context.Context, limit, offset int) ([]domain.Order, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.collectLocked(r.s.orderOrder, limit, offset), len(r.s.orderOrder), nil
}

func (r *orderStore) collectLocked(ids []string, limit, offset int) []domain.Order {
	window := page(ids, limit, offset)
	orders := make([]domain.Order, 0, len(window))
	for _, id := range window {
		orders = append(orders, *cloneOrder(r.s.orders[id]))
	}
	return orders
}

func (r *orderStore) UpdateFulfilment(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.orders[order.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := cloneOrder(current)
	updated.Status = order.Status
	updated.IsPaid = order.IsPaid
	updated.PaidAt = order.PaidAt
	updated.PaymentResult = order.PaymentResult
	updated.IsDelivered = order.IsDelivered
	updated.DeliveredAt = order.DeliveredAt
	updated.TrackingNumber = order.TrackingNumber
	updated.UpdatedAt = r.s.clock.Now()
	r.s.orders[order.ID] = cloneOrder(updated)
	order.UpdatedAt = updated.UpdatedAt
	return nil
}
