package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-api/internal/api/dto"
	"github.com/spec-kit/storefront-api/internal/service"
)

// CartHandler exposes the authenticated user's cart.
type CartHandler struct {
	carts *service.CartService
}

// NewCartHandler constructs handler.
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{carts: cartService}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	cart, err := h.carts.Get(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", fiber.Map{"cart": dto.NewCartResponse(cart)})
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AddCartItemRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	cart, err := h.carts.AddItem(c.UserContext(), user.ID, req.ProductID, req.Quantity)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "item added to cart", fiber.Map{"cart": dto.NewCartResponse(cart)})
}

// UpdateItem handles PUT /api/cart/items/:productId.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	productID, err := pathID(c, "productId", "cart item")
	if err != nil {
		return err
	}
	var req dto.UpdateCartItemRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	cart, err := h.carts.UpdateItem(c.UserContext(), user.ID, productID, req.Quantity)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "cart updated", fiber.Map{"cart": dto.NewCartResponse(cart)})
}

// RemoveItem handles DELETE /api/cart/items/:productId.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	productID, err := pathID(c, "productId", "cart item")
	if err != nil {
		return err
	}

	cart, err := h.carts.RemoveItem(c.UserContext(), user.ID, productID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "item removed from cart", fiber.Map{"cart": dto.NewCartResponse(cart)})
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	cart, err := h.carts.Clear(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "cart cleared", fiber.Map{"cart": dto.NewCartResponse(cart)})
}
