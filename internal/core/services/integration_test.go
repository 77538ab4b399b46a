package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-sync/internal/adapters/gateway"
	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/testsupport/apiserver"
)

type liveStores struct {
	api     *apiserver.Server
	session *SessionStore
	catalog *CatalogStore
	cart    *CartStore
	orders  *OrderStore
	users   *UserStore
}

func newLiveStores(t *testing.T, api *apiserver.Server) *liveStores {
	t.Helper()
	gw := gateway.New(apiserver.BaseURL, gateway.WithTransport(api.Transport()))
	session := NewSessionStore(context.Background(), gw, &memoryPersistence{})
	gw.SetTokenSource(session)
	return &liveStores{
		api:     api,
		session: session,
		catalog: NewCatalogStore(gw, gateway.EncodeQuery),
		cart:    NewCartStore(gw),
		orders:  NewOrderStore(gw),
		users:   NewUserStore(gw),
	}
}

func TestCheckoutAgainstAPI(t *testing.T) {
	api := apiserver.New()
	api.AddUser("shopper@x.com", "secret1", domain.RoleCustomer)
	hammer := api.AddProduct(domain.Product{Title: "Hammer", Price: 9.99, Stock: 10, Category: "tools"})
	ctx := context.Background()

	s := newLiveStores(t, api)
	require.NoError(t, s.session.Login(ctx, "shopper@x.com", "secret1"))
	require.NoError(t, s.cart.Add(ctx, hammer.ID, 2))
	assert.Equal(t, "19.98", s.cart.Subtotal().StringFixed(2))

	lines := make([]domain.OrderLine, 0)
	for _, item := range s.cart.Items() {
		lines = append(lines, domain.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	order, err := s.orders.Create(ctx, lines, "123 Main St")
	require.NoError(t, err)
	require.NoError(t, s.cart.Clear(ctx))

	assert.Equal(t, 19.98, order.Total)
	assert.Equal(t, domain.OrderPending, order.Status)
	assert.Empty(t, s.cart.Items())
	require.Len(t, s.orders.Own(), 1)
}

func TestOrderTotalSurvivesPriceEdit(t *testing.T) {
	api := apiserver.New()
	api.AddUser("admin@x.com", "secret1", domain.RoleAdmin)
	api.AddUser("shopper@x.com", "secret1", domain.RoleCustomer)
	saw := api.AddProduct(domain.Product{Title: "Saw", Price: 24.5, Stock: 5})
	ctx := context.Background()

	shopper := newLiveStores(t, api)
	require.NoError(t, shopper.session.Login(ctx, "shopper@x.com", "secret1"))
	order, err := shopper.orders.Create(ctx, []domain.OrderLine{{ProductID: saw.ID, Quantity: 2}}, "1 Elm St")
	require.NoError(t, err)
	require.Equal(t, 49.0, order.Total)

	admin := newLiveStores(t, api)
	require.NoError(t, admin.session.Login(ctx, "admin@x.com", "secret1"))
	price := 99.0
	_, err = admin.catalog.Update(ctx, saw.ID, domain.UpdateProductRequest{Price: &price})
	require.NoError(t, err)

	require.NoError(t, shopper.orders.Get(ctx, order.ID))
	current := shopper.orders.Current()
	assert.Equal(t, 49.0, current.Total)
	assert.Equal(t, 99.0, current.Items[0].Product.Price)
}

func TestAdminAssignAndDeliveryFlow(t *testing.T) {
	api := apiserver.New()
	api.AddUser("admin@x.com", "secret1", domain.RoleAdmin)
	agent := api.AddUser("driver@x.com", "secret1", domain.RoleDelivery)
	customer := api.AddUser("shopper@x.com", "secret1", domain.RoleCustomer)
	seeded := api.AddOrder(domain.Order{UserID: customer.ID, Total: 10, Address: "1 Elm St"})
	ctx := context.Background()

	admin := newLiveStores(t, api)
	require.NoError(t, admin.session.Login(ctx, "admin@x.com", "secret1"))
	require.NoError(t, admin.users.List(ctx))
	agents := admin.users.DeliveryAgents()
	require.Len(t, agents, 1)
	require.NoError(t, admin.orders.FetchAll(ctx))
	require.NoError(t, admin.orders.Assign(ctx, seeded.ID, agents[0].ID))
	require.NoError(t, admin.orders.UpdateStatus(ctx, seeded.ID, domain.OrderShipped))

	all := admin.orders.All()
	assert.Equal(t, agent.ID, all[0].AssignedTo)
	assert.Equal(t, domain.OrderShipped, all[0].Status)

	driver := newLiveStores(t, api)
	require.NoError(t, driver.session.Login(ctx, "driver@x.com", "secret1"))
	require.NoError(t, driver.orders.FetchAssigned(ctx))
	require.Len(t, driver.orders.Assigned(), 1)
	require.NoError(t, driver.orders.MarkDelivered(ctx, seeded.ID))

	stored, ok := api.Order(seeded.ID)
	require.True(t, ok)
	assert.Equal(t, domain.OrderDelivered, stored.Status)
	assert.ErrorIs(t, driver.orders.MarkDelivered(ctx, seeded.ID), domain.ErrInvalidTransition)
}

func TestCatalogListingAgainstAPI(t *testing.T) {
	api := apiserver.New()
	for i := 0; i < 12; i++ {
		category := "tools"
		if i%2 == 0 {
			category = "garden"
		}
		api.AddProduct(domain.Product{Title: "Item", Price: float64(i + 1), Stock: 1, Category: category})
	}
	ctx := context.Background()
	s := newLiveStores(t, api)

	q := DefaultProductQuery()
	q.Limit = 5
	q.Page = 3
	require.NoError(t, s.catalog.List(ctx, q))
	snap := s.catalog.Snapshot()
	assert.Len(t, snap.Products, 2)
	assert.Equal(t, 3, snap.Pagination.TotalPages)
	assert.Equal(t, []string{"garden", "tools"}, snap.Categories)

	category := "garden"
	sortBy, order := "price", "asc"
	s.catalog.SetFilters(FilterUpdate{Category: &category, SortBy: &sortBy, SortOrder: &order})
	require.NoError(t, s.catalog.Reload(ctx))
	products := s.catalog.Products()
	require.Len(t, products, 5)
	assert.Equal(t, 1.0, products[0].Price)
	assert.Equal(t, int64(6), s.catalog.Snapshot().Pagination.Total)
}

func TestBlockedUserCannotLogIn(t *testing.T) {
	api := apiserver.New()
	api.AddUser("admin@x.com", "secret1", domain.RoleAdmin)
	victim := api.AddUser("shopper@x.com", "secret1", domain.RoleCustomer)
	ctx := context.Background()

	admin := newLiveStores(t, api)
	require.NoError(t, admin.session.Login(ctx, "admin@x.com", "secret1"))
	require.NoError(t, admin.users.List(ctx))
	require.NoError(t, admin.users.Block(ctx, victim.ID))

	shopper := newLiveStores(t, api)
	err := shopper.session.Login(ctx, "shopper@x.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, "Account is deactivated", shopper.session.Error())
}
