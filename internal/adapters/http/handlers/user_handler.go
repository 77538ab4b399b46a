package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront-sync/internal/core/services"
	"storefront-sync/internal/pkg/response"
)

// UserHandler handles the admin user directory
type UserHandler struct {
	users *services.UserStore
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserStore) *UserHandler {
	return &UserHandler{users: users}
}

// ListUsers loads every account
// @Summary List users
// @Description Every account (admin)
// @Tags Users
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	if err := h.users.List(c.UserContext()); err != nil {
		return fail(c, err, "Failed to fetch users")
	}
	return response.Success(c, "", h.users.Snapshot())
}

// ListDeliveryAgents returns the active delivery agents from the last list
// @Summary List delivery agents
// @Description Active delivery agents (admin)
// @Tags Users
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/users/delivery [get]
func (h *UserHandler) ListDeliveryAgents(c *fiber.Ctx) error {
	if len(h.users.Users()) == 0 {
		if err := h.users.List(c.UserContext()); err != nil {
			return fail(c, err, "Failed to fetch users")
		}
	}
	return response.Success(c, "", h.users.DeliveryAgents())
}

// BlockUser deactivates an account
// @Summary Block user
// @Description Deactivate an account (admin)
// @Tags Users
// @Produce json
// @Param id path string true "ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/block [put]
func (h *UserHandler) BlockUser(c *fiber.Ctx) error {
	if err := h.users.Block(c.UserContext(), param(c, "id")); err != nil {
		return fail(c, err, "Failed to block user")
	}
	return response.Success(c, "User blocked", nil)
}

// UnblockUser reactivates an account
// @Summary Unblock user
// @Description Reactivate an account (admin)
// @Tags Users
// @Produce json
// @Param id path string true "ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/unblock [put]
func (h *UserHandler) UnblockUser(c *fiber.Ctx) error {
	if err := h.users.Unblock(c.UserContext(), param(c, "id")); err != nil {
		return fail(c, err, "Failed to unblock user")
	}
	return response.Success(c, "User unblocked", nil)
}
