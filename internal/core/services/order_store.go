package services

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/core/lifecycle"
)

const (
	opOwnOrders      = "own"
	opAllOrders      = "all"
	opAssignedOrders = "assigned"
	opOrderDetail    = "detail"
	opCreateOrder    = "createOrder"
	opOrderStatus    = "status"
	opAssign         = "assign"
)

type statusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// OrderSnapshot is a consistent copy of order state
type OrderSnapshot struct {
	Own      []domain.Order `json:"orders"`
	All      []domain.Order `json:"allOrders"`
	Assigned []domain.Order `json:"assignedOrders"`
	Current  *domain.Order  `json:"currentOrder"`
	Loading  bool           `json:"loading"`
	Error    string         `json:"error,omitempty"`
}

// OrderStore holds three independent order collections (own, all,
// assigned) and one detail slot. The collections are refreshed separately
// and may go stale independently; writes patch whichever of them holds
// the order instead of refetching.
type OrderStore struct {
	gw  Gateway
	now func() time.Time

	mu       sync.RWMutex
	own      []domain.Order
	all      []domain.Order
	assigned []domain.Order
	current  *domain.Order
	ops      *lifecycle.Tracker
	errMsg   string
}

// NewOrderStore creates an order store
func NewOrderStore(gw Gateway) *OrderStore {
	return &OrderStore{gw: gw, now: time.Now, ops: lifecycle.NewTracker()}
}

// FetchOwn loads the authenticated customer's orders
func (s *OrderStore) FetchOwn(ctx context.Context) error {
	return s.fetchList(ctx, opOwnOrders, "/orders", &s.own)
}

// FetchAll loads every order (admin)
func (s *OrderStore) FetchAll(ctx context.Context) error {
	return s.fetchList(ctx, opAllOrders, "/orders/all", &s.all)
}

// FetchAssigned loads the orders assigned to the delivery agent
func (s *OrderStore) FetchAssigned(ctx context.Context) error {
	return s.fetchList(ctx, opAssignedOrders, "/delivery/orders", &s.assigned)
}

func (s *OrderStore) fetchList(ctx context.Context, kind, path string, dst *[]domain.Order) error {
	s.mu.Lock()
	tk := s.ops.Begin(kind)
	s.errMsg = ""
	s.mu.Unlock()

	var orders []domain.Order
	err := s.gw.Request(ctx, http.MethodGet, path, nil, nil, &orders)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ops.Finish(tk, err) {
		if err != nil {
			return err
		}
		return lifecycle.ErrSuperseded
	}
	if err != nil {
		s.errMsg = domain.Message(err, "Failed to fetch orders")
		return err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	*dst = orders
	return nil
}

// Get loads one order into the detail slot
func (s *OrderStore) Get(ctx context.Context, id string) error {
	s.mu.Lock()
	tk := s.ops.Begin(opOrderDetail)
	s.errMsg = ""
	s.mu.Unlock()

	var order domain.Order
	err := s.gw.Request(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, &order)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ops.Finish(tk, err) {
		if err != nil {
			return err
		}
		return lifecycle.ErrSuperseded
	}
	if err != nil {
		s.errMsg = domain.Message(err, "Failed to fetch order")
		return err
	}
	s.current = &order
	return nil
}

// ClearCurrent empties the detail slot
func (s *OrderStore) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Create places an order and prepends it to the own collection. Clearing
// the cart afterwards is the caller's job.
func (s *OrderStore) Create(ctx context.Context, items []domain.OrderLine, address string) (*domain.Order, error) {
	lines := make([]domain.OrderLine, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, domain.Invalid("quantity", domain.ErrInvalidQuantity)
		}
		lines = append(lines, domain.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if len(lines) == 0 {
		return nil, domain.Invalid("items", domain.ErrEmptyCart)
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, domain.Invalid("address", domain.ErrAddressRequired)
	}

	s.mu.Lock()
	tk := s.ops.Begin(opCreateOrder)
	s.errMsg = ""
	s.mu.Unlock()

	var order domain.Order
	err := s.gw.Request(ctx, http.MethodPost, "/orders",
		domain.CreateOrderRequest{Items: lines, Address: address}, nil, &order)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops.Finish(tk, err)
	if err != nil {
		s.errMsg = domain.Message(err, "Failed to create order")
		return nil, err
	}

	s.own = append([]domain.Order{order}, s.own...)
	log.Printf("✅ Order placed: %s (total %.2f)", order.ID, order.Total)
	return &order, nil
}

// UpdateStatus moves an order to status (admin)
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if !status.Valid() {
		return domain.Invalid("status", domain.ErrInvalidStatus)
	}
	if err := s.checkTransition(id, status); err != nil {
		return err
	}
	return s.write(ctx, opOrderStatus, "Failed to update order status", func() error {
		return s.gw.Request(ctx, http.MethodPut, "/orders/"+url.PathEscape(id)+"/status",
			statusRequest{Status: status}, nil, nil)
	}, func(o *domain.Order) bool {
		if o.ID != id {
			return false
		}
		o.Status = status
		return true
	})
}

// MarkDelivered completes a shipped order (delivery agent)
func (s *OrderStore) MarkDelivered(ctx context.Context, id string) error {
	if err := s.checkTransition(id, domain.OrderDelivered); err != nil {
		return err
	}
	return s.write(ctx, opOrderStatus, "Failed to mark order as delivered", func() error {
		return s.gw.Request(ctx, http.MethodPut, "/delivery/orders/"+url.PathEscape(id)+"/delivered", nil, nil, nil)
	}, func(o *domain.Order) bool {
		if o.ID != id {
			return false
		}
		o.Status = domain.OrderDelivered
		return true
	})
}

// Assign hands an unassigned order to a delivery agent (admin). Status is
// not touched.
func (s *OrderStore) Assign(ctx context.Context, orderID, agentID string) error {
	if agentID == "" {
		return domain.Invalid("deliveryId", domain.ErrFieldRequired)
	}
	s.mu.RLock()
	known, ok := s.find(orderID)
	s.mu.RUnlock()
	if ok && known.AssignedTo != "" {
		return domain.Invalid("assignedTo", domain.ErrAlreadyAssigned)
	}

	return s.write(ctx, opAssign, "Failed to assign order", func() error {
		return s.gw.Request(ctx, http.MethodPut,
			"/orders/"+url.PathEscape(orderID)+"/assign/"+url.PathEscape(agentID), nil, nil, nil)
	}, func(o *domain.Order) bool {
		if o.ID != orderID {
			return false
		}
		o.AssignedTo = agentID
		return true
	})
}

// checkTransition rejects a move that is not allowed from the locally
// known status. Orders not held locally are left to the server.
func (s *OrderStore) checkTransition(id string, to domain.OrderStatus) error {
	s.mu.RLock()
	known, ok := s.find(id)
	s.mu.RUnlock()
	if ok && !domain.CanTransition(known.Status, to) {
		return domain.Invalid("status", domain.ErrInvalidTransition)
	}
	return nil
}

// find returns the freshest local copy of an order; callers hold mu
func (s *OrderStore) find(id string) (domain.Order, bool) {
	if s.current != nil && s.current.ID == id {
		return *s.current, true
	}
	for _, set := range [][]domain.Order{s.all, s.assigned, s.own} {
		for _, o := range set {
			if o.ID == id {
				return o, true
			}
		}
	}
	return domain.Order{}, false
}

// write issues a targeted mutation and on success applies patch to every
// collection and the detail slot
func (s *OrderStore) write(ctx context.Context, kind, fallback string, call func() error, patch func(*domain.Order) bool) error {
	s.mu.Lock()
	tk := s.ops.Begin(kind)
	s.errMsg = ""
	s.mu.Unlock()

	err := call()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops.Finish(tk, err)
	if err != nil {
		s.errMsg = domain.Message(err, fallback)
		return err
	}

	now := s.now()
	for _, set := range [][]domain.Order{s.own, s.all, s.assigned} {
		for i := range set {
			if patch(&set[i]) {
				set[i].UpdatedAt = now
			}
		}
	}
	if s.current != nil && patch(s.current) {
		s.current.UpdatedAt = now
	}
	return nil
}

// Reset forgets every collection (used on logout)
func (s *OrderStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.own, s.all, s.assigned, s.current = nil, nil, nil, nil
	s.errMsg = ""
	s.ops.Reset()
}

// Own returns a copy of the customer's orders
func (s *OrderStore) Own() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyOrders(s.own)
}

// All returns a copy of the admin order set
func (s *OrderStore) All() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyOrders(s.all)
}

// Assigned returns a copy of the delivery agent's orders
func (s *OrderStore) Assigned() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyOrders(s.assigned)
}

// Current returns a copy of the order in the detail slot
func (s *OrderStore) Current() *domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyOrder(s.current)
}

// Loading reports whether any order request is in flight
func (s *OrderStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ops.Busy()
}

// Error returns the last recorded error message
func (s *OrderStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Snapshot returns a consistent copy of order state
func (s *OrderStore) Snapshot() OrderSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return OrderSnapshot{
		Own:      copyOrders(s.own),
		All:      copyOrders(s.all),
		Assigned: copyOrders(s.assigned),
		Current:  copyOrder(s.current),
		Loading:  s.ops.Busy(),
		Error:    s.errMsg,
	}
}

func copyOrder(o *domain.Order) *domain.Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Items = copyLines(o.Items)
	return &cp
}

func copyOrders(orders []domain.Order) []domain.Order {
	if orders == nil {
		return nil
	}
	out := make([]domain.Order, len(orders))
	for i := range orders {
		out[i] = *copyOrder(&orders[i])
	}
	return out
}
