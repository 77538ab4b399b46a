package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront-sync/internal/app"
	"storefront-sync/internal/core/services"
	"storefront-sync/internal/pkg/response"
)

// CartHandler serves the customer cart and checkout
type CartHandler struct {
	cart   *services.CartStore
	orders *services.OrderStore
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cart *services.CartStore, orders *services.OrderStore) *CartHandler {
	return &CartHandler{cart: cart, orders: orders}
}

// AddItemRequest represents the add to cart form
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// SetQuantityRequest represents a quantity change
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CheckoutRequest represents the checkout form
type CheckoutRequest struct {
	Address string `json:"address"`
}

// Get loads the cart
// @Summary Get cart
// @Description Load the cart
// @Tags Cart
// @Produce json
// @Success 200 {object} response.Response
// @Router /customer/cart [get]
func (h *CartHandler) Get(c *fiber.Ctx) error {
	if err := h.cart.Fetch(c.UserContext()); err != nil {
		return fail(c, err, "Failed to fetch cart")
	}
	return response.Success(c, "", h.cart.Snapshot())
}

// AddItem adds a product to the cart
// @Summary Add to cart
// @Description Add a product to the cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param body body AddItemRequest true "Product and quantity"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /customer/cart/items [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	req := AddItemRequest{Quantity: 1}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.cart.Add(c.UserContext(), req.ProductID, req.Quantity); err != nil {
		return fail(c, err, "Failed to add to cart")
	}
	return response.Success(c, "Added to cart", h.cart.Snapshot())
}

// SetQuantity changes the quantity of a line; zero removes it
// @Summary Set quantity
// @Description Change the quantity of a line; zero removes it
// @Tags Cart
// @Accept json
// @Produce json
// @Param productId path string true "Product ID"
// @Param body body SetQuantityRequest true "New quantity"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customer/cart/items/{productId} [put]
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	var req SetQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.cart.SetQuantity(c.UserContext(), param(c, "productId"), req.Quantity); err != nil {
		return fail(c, err, "Failed to update cart item")
	}
	return response.Success(c, "Cart updated", h.cart.Snapshot())
}

// RemoveItem removes a line
// @Summary Remove from cart
// @Description Remove a line
// @Tags Cart
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customer/cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	if err := h.cart.Remove(c.UserContext(), param(c, "productId")); err != nil {
		return fail(c, err, "Failed to remove from cart")
	}
	return response.Success(c, "Removed from cart", h.cart.Snapshot())
}

// Clear empties the cart
// @Summary Clear cart
// @Description Empty the cart
// @Tags Cart
// @Produce json
// @Success 200 {object} response.Response
// @Router /customer/cart [delete]
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.cart.Clear(c.UserContext()); err != nil {
		return fail(c, err, "Failed to clear cart")
	}
	return response.Success(c, "Cart cleared", h.cart.Snapshot())
}

// Checkout places an order from the current cart, then clears the cart.
// The order stands even when clearing fails.
// @Summary Checkout
// @Description Place an order from the cart, then clear the cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param body body CheckoutRequest true "Delivery address"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /customer/checkout [post]
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	order, err := app.Checkout(c.UserContext(), h.cart, h.orders, req.Address)
	if err != nil {
		return fail(c, err, "Failed to place order")
	}
	return response.Created(c, "Order placed successfully", order)
}
