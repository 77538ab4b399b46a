package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"storefront-sync/internal/adapters/http/handlers"
	"storefront-sync/internal/adapters/http/middleware"
	"storefront-sync/internal/config"
	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/core/services"
	"storefront-sync/internal/pkg/response"
)

// Setup configures all routes for the dashboard
func Setup(app *fiber.App, stores *services.Stores, cfg *config.Config) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg)
	sessionHandler := handlers.NewSessionHandler(stores)
	catalogHandler := handlers.NewCatalogHandler(stores.Catalog)
	cartHandler := handlers.NewCartHandler(stores.Cart, stores.Orders)
	orderHandler := handlers.NewOrderHandler(stores.Orders)
	userHandler := handlers.NewUserHandler(stores.Users)

	// Health check & root routes
	app.Get("/", middleware.CacheControl(time.Minute), healthHandler.Root)
	app.Get("/healthz", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Session routes (public)
	setupSessionRoutes(app, sessionHandler)

	// Customer routes
	customer := app.Group("/customer")
	customer.Use(middleware.NoStore(), middleware.RequireRole(stores.Session, domain.RoleCustomer))
	setupCustomerRoutes(customer, sessionHandler, catalogHandler, cartHandler, orderHandler)

	// Admin routes
	admin := app.Group("/admin")
	admin.Use(middleware.NoStore(), middleware.RequireRole(stores.Session, domain.RoleAdmin))
	setupAdminRoutes(admin, sessionHandler, catalogHandler, orderHandler, userHandler)

	// Delivery routes
	delivery := app.Group("/delivery")
	delivery.Use(middleware.NoStore(), middleware.RequireRole(stores.Session, domain.RoleDelivery))
	setupDeliveryRoutes(delivery, sessionHandler, orderHandler)

	// Unknown routes
	app.Use(func(c *fiber.Ctx) error {
		return response.NotFound(c, "Route not found")
	})
}

// setupSessionRoutes configures login, signup and session routes
func setupSessionRoutes(router fiber.Router, handler *handlers.SessionHandler) {
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/signup", middleware.AuthRateLimiter(), handler.Signup)
	router.Post("/logout", handler.Logout)
	router.Post("/refresh", handler.Refresh)

	router.Get("/session", handler.Session)
	router.Get("/dashboard", handler.Dashboard)
}

// setupCustomerRoutes configures the storefront pages
func setupCustomerRoutes(
	router fiber.Router,
	sessionHandler *handlers.SessionHandler,
	catalogHandler *handlers.CatalogHandler,
	cartHandler *handlers.CartHandler,
	orderHandler *handlers.OrderHandler,
) {
	router.Get("/", sessionHandler.Session)

	router.Get("/products", catalogHandler.List)
	router.Delete("/products/filters", catalogHandler.ClearFilters)
	router.Get("/products/:id", catalogHandler.Get)

	router.Get("/cart", cartHandler.Get)
	router.Post("/cart/items", cartHandler.AddItem)
	router.Put("/cart/items/:productId", cartHandler.SetQuantity)
	router.Delete("/cart/items/:productId", cartHandler.RemoveItem)
	router.Delete("/cart", cartHandler.Clear)
	router.Post("/checkout", cartHandler.Checkout)

	router.Get("/orders", orderHandler.ListOwn)
	router.Get("/orders/:id", orderHandler.Get)

	router.Get("/profile", sessionHandler.Profile)
	router.Put("/profile", sessionHandler.UpdateProfile)
	router.Put("/password", sessionHandler.ChangePassword)
}

// setupAdminRoutes configures the back office
func setupAdminRoutes(
	router fiber.Router,
	sessionHandler *handlers.SessionHandler,
	catalogHandler *handlers.CatalogHandler,
	orderHandler *handlers.OrderHandler,
	userHandler *handlers.UserHandler,
) {
	router.Get("/", sessionHandler.Session)

	router.Get("/products", catalogHandler.List)
	router.Get("/products/:id", catalogHandler.Get)
	router.Post("/products", catalogHandler.Create)
	router.Put("/products/:id", catalogHandler.Update)
	router.Delete("/products/:id", catalogHandler.Delete)

	router.Get("/orders", orderHandler.ListAll)
	router.Get("/orders/:id", orderHandler.Get)
	router.Put("/orders/:id/status", orderHandler.UpdateStatus)
	router.Put("/orders/:id/assign/:agentId", orderHandler.Assign)

	router.Get("/users", userHandler.ListUsers)
	router.Get("/users/delivery", userHandler.ListDeliveryAgents)
	router.Put("/users/:id/block", userHandler.BlockUser)
	router.Put("/users/:id/unblock", userHandler.UnblockUser)
}

// setupDeliveryRoutes configures the delivery agent pages
func setupDeliveryRoutes(router fiber.Router, sessionHandler *handlers.SessionHandler, orderHandler *handlers.OrderHandler) {
	router.Get("/", sessionHandler.Session)
	router.Get("/orders", orderHandler.ListAssigned)
	router.Get("/orders/:id", orderHandler.Get)
	router.Put("/orders/:id/delivered", orderHandler.MarkDelivered)
}
