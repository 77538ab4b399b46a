package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront-sync/internal/adapters/http/middleware"
	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/core/guard"
	"storefront-sync/internal/core/services"
	"storefront-sync/internal/pkg/password"
	"storefront-sync/internal/pkg/response"
)

// SessionHandler handles login, signup, logout and the profile pages
type SessionHandler struct {
	stores *services.Stores
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(stores *services.Stores) *SessionHandler {
	return &SessionHandler{stores: stores}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest represents signup request body
type SignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePasswordRequest represents the password form
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Login authenticates and points the caller at their dashboard
// @Summary Log in
// @Description Authenticate against the storefront API and keep the session
// @Tags Session
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /login [post]
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	if err := h.stores.Session.Login(c.UserContext(), strings.TrimSpace(req.Email), req.Password); err != nil {
		return fail(c, err, "Login failed")
	}
	return h.authenticated(c, "Login successful")
}

// Signup registers a customer account; the confirmation is checked here
// and never sent to the server
// @Summary Sign up
// @Description Register a customer account; the confirmation is checked locally
// @Tags Session
// @Accept json
// @Produce json
// @Param body body SignupRequest true "Signup data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /signup [post]
func (h *SessionHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Email) == "" {
		return fail(c, domain.Invalid("email", domain.ErrFieldRequired), "Email is required")
	}
	if err := password.ValidateNew(req.Password, req.ConfirmPassword); err != nil {
		return fail(c, err, "Invalid password")
	}

	if err := h.stores.Session.Signup(c.UserContext(), strings.TrimSpace(req.Email), req.Password); err != nil {
		return fail(c, err, "Signup failed")
	}
	return h.authenticated(c, "Signup successful")
}

func (h *SessionHandler) authenticated(c *fiber.Ctx, message string) error {
	snap := h.stores.Session.Snapshot()
	return response.Success(c, message, fiber.Map{
		"session":  snap,
		"redirect": guard.Landing(snap.Guard()),
	})
}

// Logout ends the session and drops every per-user collection
// @Summary Log out
// @Description End the session and forget cart, orders and users
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response
// @Router /logout [post]
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	if err := h.stores.Logout(c.UserContext()); err != nil {
		return fail(c, err, "Logout failed")
	}
	return response.Success(c, "Logged out", fiber.Map{"redirect": guard.LoginPath})
}

// Session reports the current session without gating
// @Summary Current session
// @Description Session snapshot without gating
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response
// @Router /session [get]
// @Router /customer/ [get]
// @Router /admin/ [get]
// @Router /delivery/ [get]
func (h *SessionHandler) Session(c *fiber.Ctx) error {
	return response.Success(c, "", h.stores.Session.Snapshot())
}

// Dashboard redirects to the landing page for the current session
// @Summary Dashboard landing
// @Description Redirect to the dashboard of the current role
// @Tags Session
// @Produce json
// @Success 202 {object} response.Response
// @Failure 302 {object} response.Response
// @Router /dashboard [get]
func (h *SessionHandler) Dashboard(c *fiber.Ctx) error {
	snap := middleware.Restore(c, h.stores.Session)
	if snap.IsAuthenticated && snap.Identity == nil && snap.Loading {
		return response.Loading(c)
	}
	return c.Redirect(guard.Landing(snap.Guard()), fiber.StatusFound)
}

// Refresh exchanges the refresh token now
// @Summary Refresh tokens
// @Description Exchange the refresh token for a new pair
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /refresh [post]
func (h *SessionHandler) Refresh(c *fiber.Ctx) error {
	if err := h.stores.Session.Refresh(c.UserContext()); err != nil {
		return fail(c, err, "Token refresh failed")
	}
	return response.Success(c, "Session refreshed", h.stores.Session.Snapshot())
}

// Profile returns the current identity
// @Summary Get profile
// @Description Current identity
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Response
// @Failure 302 {object} response.Response
// @Router /customer/profile [get]
func (h *SessionHandler) Profile(c *fiber.Ctx) error {
	return response.Success(c, "", middleware.Identity(c))
}

// UpdateProfile applies a partial profile update
// @Summary Update profile
// @Description Partial profile update
// @Tags Profile
// @Accept json
// @Produce json
// @Param body body domain.ProfileUpdate true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /customer/profile [put]
func (h *SessionHandler) UpdateProfile(c *fiber.Ctx) error {
	var req domain.ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.stores.Session.UpdateIdentity(c.UserContext(), req); err != nil {
		return fail(c, err, "Failed to update profile")
	}
	return response.Success(c, "Profile updated", h.stores.Session.Identity())
}

// ChangePassword checks the confirmation and changes the password
// @Summary Change password
// @Description Check the confirmation and change the password
// @Tags Profile
// @Accept json
// @Produce json
// @Param body body ChangePasswordRequest true "Password form"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /customer/password [put]
func (h *SessionHandler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CurrentPassword == "" {
		return fail(c, domain.Invalid("currentPassword", domain.ErrFieldRequired), "Current password is required")
	}
	if err := password.ValidateNew(req.NewPassword, req.ConfirmPassword); err != nil {
		return fail(c, err, "Invalid password")
	}

	if err := h.stores.Session.ChangePassword(c.UserContext(), req.CurrentPassword, req.NewPassword); err != nil {
		return fail(c, err, "Failed to change password")
	}
	return response.Success(c, "Password updated successfully", nil)
}
