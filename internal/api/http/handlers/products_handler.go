package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-api/internal/api/dto"
	"github.com/spec-kit/storefront-api/internal/service"
)

// ProductsHandler exposes the catalog.
type ProductsHandler struct {
	catalog *service.CatalogService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(catalogService *service.CatalogService) *ProductsHandler {
	return &ProductsHandler{catalog: catalogService}
}

// List handles GET /api/products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	var query dto.ProductListQuery
	if err := bindQuery(c, &query); err != nil {
		return err
	}
	page, err := h.catalog.List(c.UserContext(), service.ProductQuery{
		Search: query.Search,
		Page:   query.Page,
		Limit:  query.Limit,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", pageResponse(page, dto.NewProductResponses))
}

// Get handles GET /api/products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "product")
	if err != nil {
		return err
	}
	product, err := h.catalog.Get(c.UserContext(), id, false)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", fiber.Map{"product": dto.NewProductResponse(product)})
}

// Create handles POST /api/products (admin).
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateProductRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	input := service.ProductInput{
		Name:              req.Name,
		Description:       req.Description,
		SKU:               req.SKU,
		Price:             req.Price,
		Quantity:          req.Quantity,
		TrackQuantity:     true,
		LowStockThreshold: req.LowStockThreshold,
		IsActive:          true,
	}
	if req.TrackQuantity != nil {
		input.TrackQuantity = *req.TrackQuantity
	}
	if req.IsActive != nil {
		input.IsActive = *req.IsActive
	}
	product, err := h.catalog.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "product created", fiber.Map{"product": dto.NewProductResponse(product)})
}

// Update handles PUT /api/products/:id (admin).
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "product")
	if err != nil {
		return err
	}
	var req dto.UpdateProductRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	product, err := h.catalog.Update(c.UserContext(), id, service.ProductUpdate{
		Name:              req.Name,
		Description:       req.Description,
		SKU:               req.SKU,
		Price:             req.Price,
		Quantity:          req.Quantity,
		TrackQuantity:     req.TrackQuantity,
		LowStockThreshold: req.LowStockThreshold,
		IsActive:          req.IsActive,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "product updated", fiber.Map{"product": dto.NewProductResponse(product)})
}
