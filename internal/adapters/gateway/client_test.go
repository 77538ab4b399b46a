package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-sync/internal/core/domain"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func TestRequestAttachesBearerAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "/api/products/p1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(domain.Product{ID: "p1", Price: 9.99})
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/", WithTokenSource(staticToken("abc")))

	var out domain.Product
	require.NoError(t, c.Request(context.Background(), http.MethodGet, "/products/p1", nil, nil, &out))
	assert.Equal(t, 9.99, out.Price)
}

func TestRequestWithoutTokenOmitsHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(staticToken("")))
	var out map[string]any
	require.NoError(t, c.Request(context.Background(), http.MethodDelete, "/cart", nil, nil, &out))
	assert.Nil(t, out)
}

func TestRequestErrorShapes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"error field", http.StatusBadRequest, `{"error":"Insufficient stock"}`, "Insufficient stock"},
		{"message field", http.StatusForbidden, `{"message":"Admin only"}`, "Admin only"},
		{"no body", http.StatusInternalServerError, ``, FallbackMessage},
		{"not json", http.StatusBadGateway, `<html>`, FallbackMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New(srv.URL).Request(context.Background(), http.MethodGet, "/x", nil, nil, nil)

			var apiErr *domain.ApiError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestRequestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New(url).Request(context.Background(), http.MethodGet, "/products", nil, nil, nil)

	var netErr *domain.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, "/products", netErr.Path)
}

func TestEncodeQueryOmitsZeroValues(t *testing.T) {
	values, err := EncodeQuery(domain.ProductQuery{Page: 2, Limit: 10, SortBy: "price", SortOrder: "asc"})
	require.NoError(t, err)

	assert.Equal(t, "2", values.Get("page"))
	assert.Equal(t, "price", values.Get("sortBy"))
	_, hasCategory := values["category"]
	assert.False(t, hasCategory)
}
