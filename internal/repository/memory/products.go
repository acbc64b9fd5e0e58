package memory

import (
	"context"
	"strings"

	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/repository"
)

type productStore struct {
	s *Store
}

func (r *productStore) skuTakenLocked(sku, exceptID string) bool {
	for id, p := range r.s.products {
		if id != exceptID && p.SKU == sku {
			return true
		}
	}
	return false
}

func (r *productStore) Create(_ context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.skuTakenLocked(product.SKU, "") {
		return repository.ErrDuplicate
	}
	now := r.s.clock.Now()
	product.ID = newID()
	product.CreatedAt = now
	product.UpdatedAt = now
	stored := *product
	r.s.products[product.ID] = &stored
	r.s.productOrder = append(r.s.productOrder, product.ID)
	return nil
}

func (r *productStore) Update(_ context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.products[product.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.skuTakenLocked(product.SKU, product.ID) {
		return repository.ErrDuplicate
	}
	product.CreatedAt = current.CreatedAt
	product.UpdatedAt = r.s.clock.Now()
	stored := *product
	r.s.products[product.ID] = &stored
	return nil
}

func (r *productStore) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	product, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *product
	return &c, nil
}

func (r *productStore) List(_ context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := ""
	if filter.SearchTerm != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
	}
	matched := make([]string, 0, len(r.s.productOrder))
	for _, id := range r.s.productOrder {
		p := r.s.products[id]
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		matched = append(matched, id)
	}

	ids := page(matched, filter.Limit, filter.Offset)
	products := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		products = append(products, *r.s.products[id])
	}
	return products, len(matched), nil
}
