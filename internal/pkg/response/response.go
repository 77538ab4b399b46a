package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/core/lifecycle"
)

// Response represents a standard dashboard response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Loading sends a 202 placeholder while session state is being restored
func Loading(c *fiber.Ctx) error {
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"loading": true,
	})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   message,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// Conflict sends a 409 conflict response
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message)
}

// FromError maps a store error to a status code and the message the store
// recorded for it.
func FromError(c *fiber.Ctx, err error, message string) error {
	var (
		apiErr *domain.ApiError
		vErr   *domain.ValidationError
		netErr *domain.NetworkError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrAlreadyAssigned),
		errors.Is(err, lifecycle.ErrSuperseded):
		return Conflict(c, message)
	case errors.As(err, &vErr):
		return BadRequest(c, message)
	case errors.Is(err, domain.ErrNotAuthenticated):
		return Unauthorized(c, message)
	case errors.As(err, &apiErr):
		return Error(c, apiErr.StatusCode, message)
	case errors.As(err, &netErr):
		return Error(c, fiber.StatusBadGateway, message)
	default:
		return Error(c, fiber.StatusInternalServerError, message)
	}
}
