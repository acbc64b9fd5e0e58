package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/repository"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

const defaultProductPageSize = 20

// CatalogService exposes the product slice of the catalog.
type CatalogService struct {
	products repository.ProductRepository
}

// ProductInput describes a new product.
type ProductInput struct {
	Name              string
	Description       string
	SKU               string
	Price             int64
	Quantity          int
	TrackQuantity     bool
	LowStockThreshold int
	IsActive          bool
}

// ProductUpdate carries optional product changes.
type ProductUpdate struct {
	Name              *string
	Description       *string
	SKU               *string
	Price             *int64
	Quantity          *int
	TrackQuantity     *bool
	LowStockThreshold *int
	IsActive          *bool
}

// ProductQuery filters a catalog listing.
type ProductQuery struct {
	Search          string
	Page            int
	Limit           int
	IncludeInactive bool
}

// NewCatalogService constructs the service.
func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

// List returns products matching query, newest first.
func (s *CatalogService) List(ctx context.Context, query ProductQuery) (Page[domain.Product], error) {
	page, limit, offset := window(query.Page, query.Limit, defaultProductPageSize)
	filter := repository.ProductFilter{
		ActiveOnly: !query.IncludeInactive,
		Limit:      limit,
		Offset:     offset,
	}
	if term := strings.TrimSpace(query.Search); term != "" {
		filter.SearchTerm = &term
	}
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return Page[domain.Product]{}, err
	}
	return Page[domain.Product]{Items: products, Total: total, Page: page, Limit: limit}, nil
}

// Get returns a product. Inactive products are hidden unless includeInactive.
func (s *CatalogService) Get(ctx context.Context, id string, includeInactive bool) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("product", map[string]any{"product_id": id})
		}
		return nil, err
	}
	if !product.IsActive && !includeInactive {
		return nil, apperrors.NewNotFound("product", map[string]any{"product_id": id})
	}
	return product, nil
}

// Create adds a product.
func (s *CatalogService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	product := &domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		SKU:         strings.TrimSpace(input.SKU),
		Price:       input.Price,
		Inventory: domain.Inventory{
			Quantity:          input.Quantity,
			TrackQuantity:     input.TrackQuantity,
			LowStockThreshold: input.LowStockThreshold,
		},
		IsActive: input.IsActive,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, productWriteError(err, product.SKU)
	}
	return product, nil
}

// Update applies the non-nil fields of update.
func (s *CatalogService) Update(ctx context.Context, id string, update ProductUpdate) (*domain.Product, error) {
	product, err := s.Get(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		product.Name = strings.TrimSpace(*update.Name)
	}
	if update.Description != nil {
		product.Description = strings.TrimSpace(*update.Description)
	}
	if update.SKU != nil {
		product.SKU = strings.TrimSpace(*update.SKU)
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.Quantity != nil {
		product.Inventory.Quantity = *update.Quantity
	}
	if update.TrackQuantity != nil {
		product.Inventory.TrackQuantity = *update.TrackQuantity
	}
	if update.LowStockThreshold != nil {
		product.Inventory.LowStockThreshold = *update.LowStockThreshold
	}
	if update.IsActive != nil {
		product.IsActive = *update.IsActive
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, product); err != nil {
		return nil, productWriteError(err, product.SKU)
	}
	return product, nil
}

func validateProduct(p *domain.Product) error {
	details := map[string]any{}
	if p.Name == "" {
		details["name"] = "required"
	}
	if p.SKU == "" {
		details["sku"] = "required"
	}
	if p.Price < 0 {
		details["price"] = "cannot be negative"
	}
	if p.Inventory.Quantity < 0 {
		details["quantity"] = "cannot be negative"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid product", details)
	}
	return nil
}

func productWriteError(err error, sku string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict("sku already in use", map[string]any{"sku": sku})
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("product", nil)
	}
	return err
}
