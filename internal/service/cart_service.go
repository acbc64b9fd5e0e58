package service

import (
	"context"
	"errors"

	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/repository"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

// CartService maintains the per-user cart.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

// NewCartService constructs the service.
func NewCartService(carts repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// Get returns the user's cart, creating an empty one on first access.
func (s *CartService) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.carts.GetOrCreate(ctx, userID)
}

// AddItem adds quantity units of a product, merging into an existing line. The
// stock check here is optimistic; placement re-checks authoritatively.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, invalidQuantity()
	}
	product, err := s.availableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.HasStock(quantity) {
		return nil, apperrors.NewInsufficientStock(product.ID, product.Name)
	}

	return s.carts.AddItem(ctx, userID, domain.CartItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		Price:       product.Price,
	})
}

// UpdateItem replaces the quantity of an existing line.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, invalidQuantity()
	}
	product, err := s.products.GetByID(ctx, productID)
	switch {
	case err == nil:
		if !product.HasStock(quantity) {
			return nil, apperrors.NewInsufficientStock(product.ID, product.Name)
		}
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	cart, err := s.carts.SetItemQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return nil, cartLineError(err, productID)
	}
	return cart, nil
}

// RemoveItem deletes a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	cart, err := s.carts.RemoveItem(ctx, userID, productID)
	if err != nil {
		return nil, cartLineError(err, productID)
	}
	return cart, nil
}

// Clear empties the cart without deleting it.
func (s *CartService) Clear(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.carts.Clear(ctx, userID)
}

func (s *CartService) availableProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("product", map[string]any{"product_id": productID})
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, apperrors.NewNotFound("product", map[string]any{"product_id": productID})
	}
	return product, nil
}

func cartLineError(err error, productID string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("cart item", map[string]any{"product_id": productID})
	}
	return err
}

func invalidQuantity() error {
	return apperrors.NewValidationError("quantity must be at least 1", map[string]any{"quantity": "min 1"})
}
