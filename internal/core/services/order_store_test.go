package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-sync/internal/core/domain"
)

func seededOrders(gw *fakeGateway, orders ...domain.Order) {
	gw.reply(http.MethodGet, "/orders/all", orders)
	gw.reply(http.MethodGet, "/orders", orders)
	gw.reply(http.MethodGet, "/delivery/orders", orders)
}

func TestCreateSendsLinesAndPrepends(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodGet, "/orders", []domain.Order{{ID: "o0", Status: domain.OrderDelivered}})
	gw.on(http.MethodPost, "/orders", func(c call) (any, error) {
		req := c.Body.(domain.CreateOrderRequest)
		total := decimal.Zero
		items := make([]domain.CartItem, 0, len(req.Items))
		for _, line := range req.Items {
			p := cartCatalog[line.ProductID]
			total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, domain.CartItem{ProductID: line.ProductID, Quantity: line.Quantity, Product: &p})
		}
		f, _ := total.Round(2).Float64()
		return domain.Order{ID: "o1", Items: items, Total: f, Status: domain.OrderPending, Address: req.Address}, nil
	})
	s := NewOrderStore(gw)
	require.NoError(t, s.FetchOwn(context.Background()))

	order, err := s.Create(context.Background(), []domain.OrderLine{{ProductID: "p1", Quantity: 2}}, "  123 Main St ")

	require.NoError(t, err)
	assert.Equal(t, 19.98, order.Total)
	assert.Equal(t, "123 Main St", order.Address)
	own := s.Own()
	require.Len(t, own, 2)
	assert.Equal(t, "o1", own[0].ID)
}

func TestCreateValidatesBeforeRequest(t *testing.T) {
	gw := newFakeGateway()
	s := NewOrderStore(gw)

	_, err := s.Create(context.Background(), nil, "123 Main St")
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	_, err = s.Create(context.Background(), []domain.OrderLine{{ProductID: "p1", Quantity: 1}}, "   ")
	assert.ErrorIs(t, err, domain.ErrAddressRequired)

	assert.Zero(t, gw.total())
}

func TestAssignPatchesAllOrders(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodGet, "/orders/all", []domain.Order{{ID: "o1", Status: domain.OrderPending}})
	gw.reply(http.MethodPut, "/orders/o1/assign/u9", map[string]string{"message": "assigned"})
	s := NewOrderStore(gw)
	require.NoError(t, s.FetchAll(context.Background()))

	require.NoError(t, s.Assign(context.Background(), "o1", "u9"))

	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, "u9", all[0].AssignedTo)
	assert.Equal(t, domain.OrderPending, all[0].Status)
	assert.Equal(t, 1, gw.count(http.MethodGet, "/orders/all"))
}

func TestAssignRejectsAssignedOrder(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodGet, "/orders/all", []domain.Order{{ID: "o1", Status: domain.OrderPending, AssignedTo: "u8"}})
	s := NewOrderStore(gw)
	require.NoError(t, s.FetchAll(context.Background()))

	err := s.Assign(context.Background(), "o1", "u9")

	assert.ErrorIs(t, err, domain.ErrAlreadyAssigned)
	assert.Equal(t, 0, gw.count(http.MethodPut, "/orders/o1/assign/u9"))
}

func TestUpdateStatusPatchesEveryCollection(t *testing.T) {
	gw := newFakeGateway()
	seededOrders(gw, domain.Order{ID: "o1", Status: domain.OrderPending})
	gw.reply(http.MethodGet, "/orders/o1", domain.Order{ID: "o1", Status: domain.OrderPending})
	gw.reply(http.MethodPut, "/orders/o1/status", nil)
	s := NewOrderStore(gw)
	ctx := context.Background()
	require.NoError(t, s.FetchOwn(ctx))
	require.NoError(t, s.FetchAll(ctx))
	require.NoError(t, s.FetchAssigned(ctx))
	require.NoError(t, s.Get(ctx, "o1"))

	require.NoError(t, s.UpdateStatus(ctx, "o1", domain.OrderShipped))

	snap := s.Snapshot()
	assert.Equal(t, domain.OrderShipped, snap.Own[0].Status)
	assert.Equal(t, domain.OrderShipped, snap.All[0].Status)
	assert.Equal(t, domain.OrderShipped, snap.Assigned[0].Status)
	assert.Equal(t, domain.OrderShipped, snap.Current.Status)
}

func TestTerminalOrdersCannotMove(t *testing.T) {
	terminal := []domain.OrderStatus{domain.OrderDelivered, domain.OrderCancelled}
	targets := []domain.OrderStatus{domain.OrderPending, domain.OrderShipped, domain.OrderDelivered, domain.OrderCancelled}

	for _, from := range terminal {
		for _, to := range targets {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				gw := newFakeGateway()
				seededOrders(gw, domain.Order{ID: "o1", Status: from})
				s := NewOrderStore(gw)
				require.NoError(t, s.FetchAll(context.Background()))

				err := s.UpdateStatus(context.Background(), "o1", to)

				var vErr *domain.ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)
				assert.Equal(t, from, s.All()[0].Status)
			})
		}
	}

	gw := newFakeGateway()
	seededOrders(gw, domain.Order{ID: "o1", Status: domain.OrderCancelled})
	s := NewOrderStore(gw)
	require.NoError(t, s.FetchAssigned(context.Background()))
	assert.ErrorIs(t, s.MarkDelivered(context.Background(), "o1"), domain.ErrInvalidTransition)
}

func TestMarkDeliveredRequiresShipped(t *testing.T) {
	gw := newFakeGateway()
	seededOrders(gw, domain.Order{ID: "o1", Status: domain.OrderPending}, domain.Order{ID: "o2", Status: domain.OrderShipped})
	gw.reply(http.MethodPut, "/delivery/orders/o2/delivered", nil)
	s := NewOrderStore(gw)
	require.NoError(t, s.FetchAssigned(context.Background()))

	assert.ErrorIs(t, s.MarkDelivered(context.Background(), "o1"), domain.ErrInvalidTransition)
	require.NoError(t, s.MarkDelivered(context.Background(), "o2"))

	assigned := s.Assigned()
	assert.Equal(t, domain.OrderPending, assigned[0].Status)
	assert.Equal(t, domain.OrderDelivered, assigned[1].Status)
}

func TestUnknownOrderIsLeftToServer(t *testing.T) {
	gw := newFakeGateway()
	gw.fail(http.MethodPut, "/orders/o404/status", http.StatusNotFound, "Order not found")
	s := NewOrderStore(gw)

	err := s.UpdateStatus(context.Background(), "o404", domain.OrderShipped)

	assert.True(t, domain.IsStatus(err, http.StatusNotFound))
	assert.Equal(t, "Order not found", s.Error())
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	gw := newFakeGateway()
	s := NewOrderStore(gw)

	assert.ErrorIs(t, s.UpdateStatus(context.Background(), "o1", "lost"), domain.ErrInvalidStatus)
	assert.Zero(t, gw.total())
}

func TestFetchFailureKeepsCollection(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodGet, "/orders", []domain.Order{{ID: "o1"}})
	s := NewOrderStore(gw)
	require.NoError(t, s.FetchOwn(context.Background()))

	gw.fail(http.MethodGet, "/orders", http.StatusInternalServerError, "")
	require.Error(t, s.FetchOwn(context.Background()))

	assert.Equal(t, "Failed to fetch orders", s.Error())
	assert.Len(t, s.Own(), 1)
	assert.False(t, s.Loading())
}
