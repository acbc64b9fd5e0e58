package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-api/internal/api/dto"
	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/service"
)

// OrdersHandler exposes checkout and order management endpoints.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orderService}
}

// Place handles POST /api/orders.
func (h *OrdersHandler) Place(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.PlaceOrderRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	lines := make([]service.OrderLineInput, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		lines = append(lines, service.OrderLineInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	order, err := h.orders.PlaceOrder(c.UserContext(), user.ID, service.PlaceOrderInput{
		Items:           lines,
		ShippingAddress: req.ShippingAddress.ToDomain(),
		PaymentMethod:   req.PaymentMethod,
		TaxPrice:        req.TaxPrice,
		ShippingPrice:   req.ShippingPrice,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "order placed", fiber.Map{"order": dto.NewOrderResponse(order)})
}

// Mine handles GET /api/orders/myorders.
func (h *OrdersHandler) Mine(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var query dto.PageQuery
	if err := bindQuery(c, &query); err != nil {
		return err
	}
	page, err := h.orders.ListMine(c.UserContext(), user.ID, query.Page, query.Limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", pageResponse(page, dto.NewOrderResponses))
}

// List handles GET /api/orders (admin).
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	var query dto.PageQuery
	if err := bindQuery(c, &query); err != nil {
		return err
	}
	page, err := h.orders.ListAll(c.UserContext(), query.Page, query.Limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", pageResponse(page, dto.NewOrderResponses))
}

// Get handles GET /api/orders/:id.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "order")
	if err != nil {
		return err
	}
	order, err := h.orders.GetForUser(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", fiber.Map{"order": dto.NewOrderResponse(order)})
}

// Pay handles PUT /api/orders/:id/pay.
func (h *OrdersHandler) Pay(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "order")
	if err != nil {
		return err
	}
	var req dto.PayOrderRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	order, err := h.orders.Pay(c.UserContext(), user, id, domain.PaymentResult{
		ID:           req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.EmailAddress,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "order paid", fiber.Map{"order": dto.NewOrderResponse(order)})
}

// UpdateStatus handles PUT /api/orders/:id/status (admin).
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "order")
	if err != nil {
		return err
	}
	var req dto.UpdateOrderStatusRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	order, err := h.orders.UpdateStatus(c.UserContext(), id, domain.OrderStatus(req.Status), req.TrackingNumber)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "order status updated", fiber.Map{"order": dto.NewOrderResponse(order)})
}
