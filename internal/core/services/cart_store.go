package services

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"sync"

	"github.com/shopspring/decimal"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/core/lifecycle"
)

const (
	opFetch  = "fetch"
	opMutate = "mutate"
	opClear  = "clear"
)

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartSnapshot is a consistent copy of cart state
type CartSnapshot struct {
	Items    []domain.CartItem `json:"items"`
	Count    int               `json:"count"`
	Subtotal decimal.Decimal   `json:"subtotal"`
	Loading  bool              `json:"loading"`
	Error    string            `json:"error,omitempty"`
}

// CartStore mirrors the server-side cart of the authenticated user.
// Every line mutation is followed by a full fetch so the product joins
// never drift from the catalog.
type CartStore struct {
	gw Gateway

	mu     sync.RWMutex
	items  []domain.CartItem
	ops    *lifecycle.Tracker
	errMsg string
}

// NewCartStore creates a cart store
func NewCartStore(gw Gateway) *CartStore {
	return &CartStore{gw: gw, ops: lifecycle.NewTracker()}
}

// Fetch replaces the local lines with the server cart
func (s *CartStore) Fetch(ctx context.Context) error {
	return s.fetch(ctx, "Failed to fetch cart")
}

func (s *CartStore) fetch(ctx context.Context, fallback string) error {
	s.mu.Lock()
	tk := s.ops.Begin(opFetch)
	s.errMsg = ""
	s.mu.Unlock()

	var cart domain.Cart
	err := s.gw.Request(ctx, http.MethodGet, "/cart", nil, nil, &cart)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ops.Finish(tk, err) {
		if err != nil {
			return err
		}
		return lifecycle.ErrSuperseded
	}
	if err != nil {
		s.errMsg = domain.Message(err, fallback)
		return err
	}
	s.items = normalizeLines(cart.Items)
	return nil
}

// Add puts quantity units of a product in the cart, then refetches
func (s *CartStore) Add(ctx context.Context, productID string, quantity int) error {
	if productID == "" {
		return domain.Invalid("productId", domain.ErrFieldRequired)
	}
	if quantity < 1 {
		return domain.Invalid("quantity", domain.ErrInvalidQuantity)
	}
	return s.mutate(ctx, "Failed to add to cart", func() error {
		return s.gw.Request(ctx, http.MethodPost, "/cart",
			addToCartRequest{ProductID: productID, Quantity: quantity}, nil, nil)
	})
}

// SetQuantity changes a line's quantity; zero or less removes the line
func (s *CartStore) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, productID)
	}
	return s.mutate(ctx, "Failed to update cart item", func() error {
		return s.gw.Request(ctx, http.MethodPut, "/cart/"+url.PathEscape(productID),
			setQuantityRequest{Quantity: quantity}, nil, nil)
	})
}

// Remove deletes a line, then refetches
func (s *CartStore) Remove(ctx context.Context, productID string) error {
	return s.mutate(ctx, "Failed to remove from cart", func() error {
		return s.gw.Request(ctx, http.MethodDelete, "/cart/"+url.PathEscape(productID), nil, nil, nil)
	})
}

// mutate runs a line write and the refetch that follows it under one
// ticket, so the store stays loading until the refreshed lines are in.
func (s *CartStore) mutate(ctx context.Context, fallback string, call func() error) error {
	s.mu.Lock()
	tk := s.ops.Begin(opMutate)
	s.errMsg = ""
	s.mu.Unlock()

	err := call()
	if err == nil {
		err = s.fetch(ctx, fallback)
		s.mu.Lock()
		s.ops.Finish(tk, err)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ops.Finish(tk, err) {
		s.errMsg = domain.Message(err, fallback)
	}
	return err
}

// Clear empties the server cart and, on success, the local lines.
// No refetch: the server confirmation is trusted.
func (s *CartStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	tk := s.ops.Begin(opClear)
	s.errMsg = ""
	s.mu.Unlock()

	err := s.gw.Request(ctx, http.MethodDelete, "/cart", nil, nil, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops.Finish(tk, err)
	if err != nil {
		s.errMsg = domain.Message(err, "Failed to clear cart")
		return err
	}
	s.items = nil
	return nil
}

// Reset drops local lines without contacting the server (used on logout)
func (s *CartStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.errMsg = ""
	s.ops.Reset()
}

// Items returns a copy of the lines
func (s *CartStore) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyLines(s.items)
}

// Subtotal is the display total of the lines at their joined prices
func (s *CartStore) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Subtotal(s.items)
}

// Count returns the total number of units
func (s *CartStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countUnits(s.items)
}

// Loading reports whether any cart request is in flight
func (s *CartStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ops.Busy()
}

// Error returns the last recorded error message
func (s *CartStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Snapshot returns a consistent copy of cart state
func (s *CartStore) Snapshot() CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CartSnapshot{
		Items:    copyLines(s.items),
		Count:    countUnits(s.items),
		Subtotal: domain.Subtotal(s.items),
		Loading:  s.ops.Busy(),
		Error:    s.errMsg,
	}
}

// normalizeLines drops non-positive quantities and merges duplicate
// product ids, keeping first-seen order
func normalizeLines(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if item.Quantity <= 0 || item.ProductID == "" {
			continue
		}
		if i, ok := index[item.ProductID]; ok {
			log.Printf("⚠️ Warning: cart returned duplicate line for product %s", item.ProductID)
			out[i].Quantity += item.Quantity
			if out[i].Product == nil {
				out[i].Product = item.Product
			}
			continue
		}
		index[item.ProductID] = len(out)
		out = append(out, item)
	}
	return out
}

func copyLines(items []domain.CartItem) []domain.CartItem {
	if items == nil {
		return nil
	}
	out := make([]domain.CartItem, len(items))
	for i, item := range items {
		out[i] = item
		if item.Product != nil {
			p := *item.Product
			out[i].Product = &p
		}
	}
	return out
}

func countUnits(items []domain.CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
