package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-sync/internal/adapters/gateway"
	"storefront-sync/internal/config"
	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/testsupport/apiserver"
)

func TestCheckoutPlacesOrderThenClearsCart(t *testing.T) {
	api := apiserver.New()
	shopper := api.AddUser("shopper@x.com", "secret1", domain.RoleCustomer)
	hammer := api.AddProduct(domain.Product{Title: "Hammer", Price: 9.99, Stock: 10})
	ctx := context.Background()

	rt, err := New(ctx, testConfig(config.SessionStoreMemory), gateway.WithTransport(api.Transport()))
	require.NoError(t, err)
	defer rt.Close()
	s := rt.Stores

	require.NoError(t, s.Session.Login(ctx, "shopper@x.com", "secret1"))
	require.NoError(t, s.Cart.Add(ctx, hammer.ID, 3))

	order, err := Checkout(ctx, s.Cart, s.Orders, "1 Elm St")
	require.NoError(t, err)
	assert.Equal(t, "1 Elm St", order.Address)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)

	assert.Empty(t, api.CartLines(shopper.ID))
	assert.Empty(t, s.Cart.Items())
	assert.Len(t, s.Orders.Own(), 1)
}

func TestCheckoutRejectedKeepsCart(t *testing.T) {
	api := apiserver.New()
	shopper := api.AddUser("shopper@x.com", "secret1", domain.RoleCustomer)
	hammer := api.AddProduct(domain.Product{Title: "Hammer", Price: 9.99, Stock: 10})
	ctx := context.Background()

	rt, err := New(ctx, testConfig(config.SessionStoreMemory), gateway.WithTransport(api.Transport()))
	require.NoError(t, err)
	defer rt.Close()
	s := rt.Stores

	require.NoError(t, s.Session.Login(ctx, "shopper@x.com", "secret1"))
	require.NoError(t, s.Cart.Add(ctx, hammer.ID, 1))

	order, err := Checkout(ctx, s.Cart, s.Orders, "  ")
	assert.ErrorIs(t, err, domain.ErrAddressRequired)
	assert.Nil(t, order)
	assert.Len(t, api.CartLines(shopper.ID), 1)
	assert.Len(t, s.Cart.Items(), 1)
}
