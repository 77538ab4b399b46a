package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-sync/internal/core/domain"
)

func TestParamSurvivesLaterRequests(t *testing.T) {
	app := fiber.New()
	var kept []string
	app.Get("/orders/:id/assign/:agentId", func(c *fiber.Ctx) error {
		kept = append(kept, param(c, "agentId"))
		return c.SendStatus(fiber.StatusOK)
	})

	first := "agent-1"
	paths := []string{
		"/orders/o1/assign/" + first,
		"/orders/" + strings.Repeat("x", 64) + "/assign/" + strings.Repeat("y", 64),
		"/orders/" + strings.Repeat("z", 128) + "/assign/agent-3",
	}
	for _, p := range paths {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, p, nil), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	require.Len(t, kept, 3)
	assert.Equal(t, first, kept[0])
	assert.Equal(t, strings.Repeat("y", 64), kept[1])
	assert.Equal(t, "agent-3", kept[2])
}

func TestDecodeQueryCopiesValues(t *testing.T) {
	app := fiber.New()
	var kept []domain.ProductQuery
	app.Get("/products", func(c *fiber.Ctx) error {
		var q domain.ProductQuery
		if err := decodeQuery(c, &q); err != nil {
			return err
		}
		kept = append(kept, q)
		return c.SendStatus(fiber.StatusOK)
	})

	for _, p := range []string{
		"/products?category=garden&page=2",
		"/products?category=" + strings.Repeat("w", 96) + "&search=" + strings.Repeat("v", 96),
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, p, nil), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	require.Len(t, kept, 2)
	assert.Equal(t, "garden", kept[0].Category)
	assert.Equal(t, 2, kept[0].Page)
	assert.Equal(t, strings.Repeat("v", 96), kept[1].Search)
}
