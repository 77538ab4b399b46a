package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"storefront-sync/internal/adapters/http/middleware"
	"storefront-sync/internal/adapters/http/routes"
	"storefront-sync/internal/app"
	"storefront-sync/internal/config"

	_ "storefront-sync/docs" // Swagger docs
)

// @title Storefront Dashboard
// @version 1.0
// @description Dashboard over the storefront client stores: session, catalog, cart, orders and users

// @BasePath /

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect session storage, gateway and stores
	rt, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize client: %v", err)
	}
	defer rt.Close()

	// Refresh tokens ahead of expiry
	keeper := rt.Keeper()
	if err := keeper.Start(); err != nil {
		log.Fatalf("❌ Failed to start session keeper: %v", err)
	}
	defer keeper.Stop()

	// Create Fiber app
	fiberApp := fiber.New(fiber.Config{
		AppName:      "Storefront Dashboard",
		Immutable:    true,
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(fiberApp, cfg)

	// Setup routes
	routes.Setup(fiberApp, rt.Stores, cfg)

	// Graceful shutdown
	go gracefulShutdown(fiberApp)

	// Start server
	log.Printf("🚀 Dashboard starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := fiberApp.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
