package services

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/core/lifecycle"
	"storefront-sync/internal/pkg/pagination"
)

const (
	opList   = "list"
	opGet    = "get"
	opCreate = "create"
	opEdit   = "update"
	opDelete = "delete"
)

// Default catalog ordering
const (
	DefaultSortBy    = "createdAt"
	DefaultSortOrder = "desc"
)

// QueryEncoder turns listing parameters into query values
type QueryEncoder func(v any) (url.Values, error)

// FilterUpdate changes some catalog filters; nil fields are kept
type FilterUpdate struct {
	Category  *string
	Search    *string
	SortBy    *string
	SortOrder *string
}

// CatalogSnapshot is a consistent copy of catalog state
type CatalogSnapshot struct {
	Products   []domain.Product    `json:"products"`
	Current    *domain.Product     `json:"currentProduct"`
	Categories []string            `json:"categories"`
	Filters    domain.ProductQuery `json:"filters"`
	Pagination pagination.Meta     `json:"pagination"`
	Loading    bool                `json:"loading"`
	Error      string              `json:"error,omitempty"`
}

// CatalogStore owns the product listing and the product being viewed.
// Listing replaces the collection wholesale; admin writes patch it locally.
type CatalogStore struct {
	gw     Gateway
	encode QueryEncoder

	mu         sync.RWMutex
	products   []domain.Product
	current    *domain.Product
	categories []string
	filters    domain.ProductQuery
	total      int64
	ops        *lifecycle.Tracker
	errMsg     string
}

// NewCatalogStore creates a catalog store
func NewCatalogStore(gw Gateway, encode QueryEncoder) *CatalogStore {
	return &CatalogStore{
		gw:      gw,
		encode:  encode,
		filters: DefaultProductQuery(),
		ops:     lifecycle.NewTracker(),
	}
}

// DefaultProductQuery returns the initial listing parameters
func DefaultProductQuery() domain.ProductQuery {
	return domain.ProductQuery{
		Page:      1,
		Limit:     pagination.DefaultLimit,
		SortBy:    DefaultSortBy,
		SortOrder: DefaultSortOrder,
	}
}

func normalizeQuery(q domain.ProductQuery) domain.ProductQuery {
	p := pagination.Normalize(q.Page, q.Limit)
	q.Page, q.Limit = p.Page, p.Limit
	if q.SortBy == "" {
		q.SortBy = DefaultSortBy
	}
	if q.SortOrder != "asc" && q.SortOrder != "desc" {
		q.SortOrder = DefaultSortOrder
	}
	return q
}

// List fetches one page of products. The query becomes the store's filter
// state when issued; only the most recently issued listing may write the
// collection, so a slow older response never overwrites a newer one.
func (s *CatalogStore) List(ctx context.Context, q domain.ProductQuery) error {
	q = normalizeQuery(q)
	values, err := s.encode(q)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.filters = q
	tk := s.ops.Begin(opList)
	s.errMsg = ""
	s.mu.Unlock()

	var page domain.ProductPage
	err = s.gw.Request(ctx, http.MethodGet, "/products", nil, values, &page)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ops.Finish(tk, err) {
		if err != nil {
			return err
		}
		return lifecycle.ErrSuperseded
	}
	if err != nil {
		s.errMsg = domain.Message(err, "Failed to fetch products")
		return err
	}

	s.products = page.Products
	s.categories = page.Categories
	s.total = page.Total
	if page.Page > 0 {
		s.filters.Page = page.Page
	}
	if page.Limit > 0 {
		s.filters.Limit = page.Limit
	}
	return nil
}

// Reload lists again with the current filters
func (s *CatalogStore) Reload(ctx context.Context) error {
	return s.List(ctx, s.Filters())
}

// SetFilters merges update into the filters and resets to the first page.
// It does not fetch; call Reload.
func (s *CatalogStore) SetFilters(update FilterUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if update.Category != nil {
		s.filters.Category = *update.Category
	}
	if update.Search != nil {
		s.filters.Search = *update.Search
	}
	if update.SortBy != nil {
		s.filters.SortBy = *update.SortBy
	}
	if update.SortOrder != nil {
		s.filters.SortOrder = *update.SortOrder
	}
	s.filters.Page = 1
	s.filters = normalizeQuery(s.filters)
}

// ClearFilters restores the default filters, keeping the page size
func (s *CatalogStore) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	limit := s.filters.Limit
	s.filters = DefaultProductQuery()
	s.filters.Limit = limit
}

// GetByID loads a single product into the detail slot
func (s *CatalogStore) GetByID(ctx context.Context, id string) error {
	s.mu.Lock()
	tk := s.ops.Begin(opGet)
	s.errMsg = ""
	s.mu.Unlock()

	var product domain.Product
	err := s.gw.Request(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, &product)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ops.Finish(tk, err) {
		if err != nil {
			return err
		}
		return lifecycle.ErrSuperseded
	}
	if err != nil {
		s.errMsg = domain.Message(err, "Failed to fetch product")
		return err
	}
	s.current = &product
	return nil
}

// ClearCurrent empties the detail slot
func (s *CatalogStore) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Create adds a product and prepends it locally
func (s *CatalogStore) Create(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	s.mu.Lock()
	tk := s.ops.Begin(opCreate)
	s.errMsg = ""
	s.mu.Unlock()

	var product domain.Product
	err := s.gw.Request(ctx, http.MethodPost, "/products", req, nil, &product)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops.Finish(tk, err)
	if err != nil {
		s.errMsg = domain.Message(err, "Failed to create product")
		return nil, err
	}

	s.products = append([]domain.Product{product}, s.products...)
	s.total++
	return &product, nil
}

// Update edits a product and splices the result into the listing and the
// detail slot
func (s *CatalogStore) Update(ctx context.Context, id string, req domain.UpdateProductRequest) (*domain.Product, error) {
	s.mu.Lock()
	tk := s.ops.Begin(opEdit)
	s.errMsg = ""
	s.mu.Unlock()

	var product domain.Product
	err := s.gw.Request(ctx, http.MethodPut, "/products/"+url.PathEscape(id), req, nil, &product)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops.Finish(tk, err)
	if err != nil {
		s.errMsg = domain.Message(err, "Failed to update product")
		return nil, err
	}

	for i := range s.products {
		if s.products[i].ID == product.ID {
			s.products[i] = product
			break
		}
	}
	if s.current != nil && s.current.ID == product.ID {
		cp := product
		s.current = &cp
	}
	return &product, nil
}

// Delete removes a product and filters it out locally
func (s *CatalogStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	tk := s.ops.Begin(opDelete)
	s.errMsg = ""
	s.mu.Unlock()

	err := s.gw.Request(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops.Finish(tk, err)
	if err != nil {
		s.errMsg = domain.Message(err, "Failed to delete product")
		return err
	}

	kept := s.products[:0:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) < len(s.products) && s.total > 0 {
		s.total--
	}
	s.products = kept
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	return nil
}

// Products returns a copy of the current listing
func (s *CatalogStore) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product(nil), s.products...)
}

// Current returns a copy of the product in the detail slot
func (s *CatalogStore) Current() *domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Filters returns the current listing parameters
func (s *CatalogStore) Filters() domain.ProductQuery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// Loading reports whether any catalog request is in flight
func (s *CatalogStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ops.Busy()
}

// Error returns the last recorded error message
func (s *CatalogStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Snapshot returns a consistent copy of catalog state
func (s *CatalogStore) Snapshot() CatalogSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var current *domain.Product
	if s.current != nil {
		cp := *s.current
		current = &cp
	}
	return CatalogSnapshot{
		Products:   append([]domain.Product(nil), s.products...),
		Current:    current,
		Categories: append([]string(nil), s.categories...),
		Filters:    s.filters,
		Pagination: pagination.GetMeta(pagination.Params{Page: s.filters.Page, Limit: s.filters.Limit}, s.total),
		Loading:    s.ops.Busy(),
		Error:      s.errMsg,
	}
}
