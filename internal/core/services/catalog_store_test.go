package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/core/lifecycle"
)

func pageEncoder(v any) (url.Values, error) {
	q := v.(domain.ProductQuery)
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("limit", strconv.Itoa(q.Limit))
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	return values, nil
}

func productPage(page int, ids ...string) domain.ProductPage {
	products := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		products = append(products, domain.Product{ID: id, Title: "Product " + id, Price: 10})
	}
	return domain.ProductPage{Products: products, Total: 25, Page: page, Limit: 10, Categories: []string{"tools"}}
}

func TestListAppliesPageFromResponse(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodGet, "/products", productPage(1, "p1", "p2"))
	s := NewCatalogStore(gw, pageEncoder)

	require.NoError(t, s.List(context.Background(), DefaultProductQuery()))

	snap := s.Snapshot()
	assert.Len(t, snap.Products, 2)
	assert.Equal(t, []string{"tools"}, snap.Categories)
	assert.Equal(t, int64(25), snap.Pagination.Total)
	assert.Equal(t, 3, snap.Pagination.TotalPages)
	assert.True(t, snap.Pagination.HasNext)
	assert.False(t, snap.Loading)
}

func TestListLatestRequestWins(t *testing.T) {
	gw := newFakeGateway()
	releaseFirst := make(chan struct{})
	firstStarted := make(chan struct{})
	gw.on(http.MethodGet, "/products", func(c call) (any, error) {
		if c.Query.Get("page") == "1" {
			close(firstStarted)
			<-releaseFirst
			return productPage(1, "p1"), nil
		}
		return productPage(2, "p11"), nil
	})
	s := NewCatalogStore(gw, pageEncoder)

	first := make(chan error, 1)
	go func() {
		q := DefaultProductQuery()
		q.Page = 1
		first <- s.List(context.Background(), q)
	}()
	<-firstStarted

	q := DefaultProductQuery()
	q.Page = 2
	require.NoError(t, s.List(context.Background(), q))
	close(releaseFirst)

	select {
	case err := <-first:
		assert.ErrorIs(t, err, lifecycle.ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("first listing did not return")
	}

	assert.Equal(t, 2, s.Filters().Page)
	require.Len(t, s.Products(), 1)
	assert.Equal(t, "p11", s.Products()[0].ID)
}

func TestListFailureKeepsProducts(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodGet, "/products", productPage(1, "p1"))
	s := NewCatalogStore(gw, pageEncoder)
	require.NoError(t, s.List(context.Background(), DefaultProductQuery()))

	gw.fail(http.MethodGet, "/products", http.StatusInternalServerError, "")
	require.Error(t, s.Reload(context.Background()))

	assert.Equal(t, "Failed to fetch products", s.Error())
	assert.Len(t, s.Products(), 1)
}

func TestSetFiltersResetsPage(t *testing.T) {
	s := NewCatalogStore(newFakeGateway(), pageEncoder)
	s.mu.Lock()
	s.filters.Page = 3
	s.mu.Unlock()

	category := "tools"
	badOrder := "sideways"
	s.SetFilters(FilterUpdate{Category: &category, SortOrder: &badOrder})

	f := s.Filters()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, "tools", f.Category)
	assert.Equal(t, DefaultSortOrder, f.SortOrder)

	s.ClearFilters()
	assert.Equal(t, DefaultProductQuery(), s.Filters())
}

func TestGetByIDFillsDetailSlot(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodGet, "/products/p1", domain.Product{ID: "p1", Title: "Hammer", Price: 12.5})
	s := NewCatalogStore(gw, pageEncoder)

	require.NoError(t, s.GetByID(context.Background(), "p1"))
	assert.Equal(t, "Hammer", s.Current().Title)

	s.ClearCurrent()
	assert.Nil(t, s.Current())
}

func TestAdminWritesPatchListing(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodGet, "/products", productPage(1, "p1", "p2"))
	gw.reply(http.MethodPost, "/products", domain.Product{ID: "p3", Title: "New", Price: 5})
	gw.reply(http.MethodPut, "/products/p1", domain.Product{ID: "p1", Title: "Renamed", Price: 10})
	gw.reply(http.MethodGet, "/products/p1", domain.Product{ID: "p1", Title: "Product p1", Price: 10})
	gw.reply(http.MethodDelete, "/products/p2", nil)
	s := NewCatalogStore(gw, pageEncoder)
	require.NoError(t, s.List(context.Background(), DefaultProductQuery()))
	require.NoError(t, s.GetByID(context.Background(), "p1"))

	_, err := s.Create(context.Background(), domain.CreateProductRequest{Title: "New", Price: 5})
	require.NoError(t, err)
	_, err = s.Update(context.Background(), "p1", domain.UpdateProductRequest{})
	require.NoError(t, err)
	require.NoError(t, s.Delete(context.Background(), "p2"))

	products := s.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "p3", products[0].ID)
	assert.Equal(t, "Renamed", products[1].Title)
	assert.Equal(t, "Renamed", s.Current().Title)
	assert.Equal(t, int64(25), s.Snapshot().Pagination.Total)
}
