package app

import (
	"context"
	"log"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/core/services"
)

// Checkout places an order for the current cart lines and empties the cart.
// A failed clear is logged and the order still stands.
func Checkout(ctx context.Context, cart *services.CartStore, orders *services.OrderStore, address string) (*domain.Order, error) {
	if err := cart.Fetch(ctx); err != nil {
		return nil, err
	}
	items := cart.Items()
	lines := make([]domain.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := orders.Create(ctx, lines, address)
	if err != nil {
		return nil, err
	}
	if err := cart.Clear(ctx); err != nil {
		log.Printf("⚠️ Warning: order %s placed but cart not cleared: %v", order.ID, err)
	}
	return order, nil
}
