package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/core/services"
	"storefront-sync/internal/pkg/response"
)

// OrderHandler serves order pages for every role
type OrderHandler struct {
	orders *services.OrderStore
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *services.OrderStore) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// UpdateStatusRequest represents a status change
type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// ListOwn loads the caller's orders
// @Summary List own orders
// @Description Orders of the current customer
// @Tags Orders
// @Produce json
// @Success 200 {object} response.Response
// @Router /customer/orders [get]
func (h *OrderHandler) ListOwn(c *fiber.Ctx) error {
	if err := h.orders.FetchOwn(c.UserContext()); err != nil {
		return fail(c, err, "Failed to fetch orders")
	}
	return response.Success(c, "", h.orders.Own())
}

// ListAll loads every order
// @Summary List all orders
// @Description Every order (admin)
// @Tags Orders
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/orders [get]
func (h *OrderHandler) ListAll(c *fiber.Ctx) error {
	if err := h.orders.FetchAll(c.UserContext()); err != nil {
		return fail(c, err, "Failed to fetch orders")
	}
	return response.Success(c, "", h.orders.All())
}

// ListAssigned loads the orders assigned to the delivery agent
// @Summary List assigned orders
// @Description Orders assigned to the delivery agent
// @Tags Orders
// @Produce json
// @Success 200 {object} response.Response
// @Router /delivery/orders [get]
func (h *OrderHandler) ListAssigned(c *fiber.Ctx) error {
	if err := h.orders.FetchAssigned(c.UserContext()); err != nil {
		return fail(c, err, "Failed to fetch orders")
	}
	return response.Success(c, "", h.orders.Assigned())
}

// Get loads one order
// @Summary Get order
// @Description Load one order
// @Tags Orders
// @Produce json
// @Param id path string true "ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customer/orders/{id} [get]
// @Router /admin/orders/{id} [get]
// @Router /delivery/orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	if err := h.orders.Get(c.UserContext(), param(c, "id")); err != nil {
		return fail(c, err, "Failed to fetch order")
	}
	return response.Success(c, "", h.orders.Current())
}

// UpdateStatus moves an order along its lifecycle
// @Summary Update order status
// @Description Move an order along its lifecycle (admin)
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "ID"
// @Param body body UpdateStatusRequest true "New status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	id := param(c, "id")
	if err := h.orders.UpdateStatus(c.UserContext(), id, req.Status); err != nil {
		return fail(c, err, "Failed to update order status")
	}
	return response.Success(c, "Order status updated", fiber.Map{"id": id, "status": req.Status})
}

// Assign hands an order to a delivery agent
// @Summary Assign order
// @Description Hand an order to a delivery agent (admin)
// @Tags Orders
// @Produce json
// @Param id path string true "ID"
// @Param agentId path string true "Delivery agent ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/orders/{id}/assign/{agentId} [put]
func (h *OrderHandler) Assign(c *fiber.Ctx) error {
	id, agent := param(c, "id"), param(c, "agentId")
	if err := h.orders.Assign(c.UserContext(), id, agent); err != nil {
		return fail(c, err, "Failed to assign order")
	}
	return response.Success(c, "Order assigned", fiber.Map{"id": id, "assignedTo": agent})
}

// MarkDelivered records a delivery
// @Summary Mark delivered
// @Description Record a delivery (delivery agent)
// @Tags Orders
// @Produce json
// @Param id path string true "ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /delivery/orders/{id}/delivered [put]
func (h *OrderHandler) MarkDelivered(c *fiber.Ctx) error {
	id := param(c, "id")
	if err := h.orders.MarkDelivered(c.UserContext(), id); err != nil {
		return fail(c, err, "Failed to mark order as delivered")
	}
	return response.Success(c, "Order delivered", fiber.Map{"id": id, "status": domain.OrderDelivered})
}
