package memory

import (
	"context"

	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/repository"
)

type cartStore struct {
	s *Store
}

func (r *cartStore) cartLocked(userID string) *domain.Cart {
	cart, ok := r.s.carts[userID]
	if !ok {
		now := r.s.clock.Now()
		cart = &domain.Cart{UserID: userID, Items: []domain.CartItem{}, CreatedAt: now, UpdatedAt: now}
		r.s.carts[userID] = cart
	}
	return cart
}

// snapshotLocked copies the cart and fills product names from the catalog.
func (r *cartStore) snapshotLocked(cart *domain.Cart) *domain.Cart {
	c := *cart
	c.Items = make([]domain.CartItem, len(cart.Items))
	copy(c.Items, cart.Items)
	for i := range c.Items {
		if p, ok := r.s.products[c.Items[i].ProductID]; ok {
			c.Items[i].ProductName = p.Name
		}
	}
	return &c
}

func (r *cartStore) GetOrCreate(_ context.Context, userID string) (*domain.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.snapshotLocked(r.cartLocked(userID)), nil
}

func (r *cartStore) AddItem(_ context.Context, userID string, item domain.CartItem) (*domain.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cart := r.cartLocked(userID)
	now := r.s.clock.Now()
	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == item.ProductID {
			cart.Items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		if item.AddedAt.IsZero() {
			item.AddedAt = now
		}
		cart.Items = append(cart.Items, item)
	}
	cart.UpdatedAt = now
	return r.snapshotLocked(cart), nil
}

func (r *cartStore) SetItemQuantity(_ context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cart, ok := r.s.carts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			cart.UpdatedAt = r.s.clock.Now()
			return r.snapshotLocked(cart), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *cartStore) RemoveItem(_ context.Context, userID, productID string) (*domain.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cart, ok := r.s.carts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			cart.UpdatedAt = r.s.clock.Now()
			return r.snapshotLocked(cart), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *cartStore) Clear(_ context.Context, userID string) (*domain.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cart := r.cartLocked(userID)
	cart.Items = []domain.CartItem{}
	cart.UpdatedAt = r.s.clock.Now()
	return r.snapshotLocked(cart), nil
}
