package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/core/services"
	"storefront-sync/internal/pkg/response"
)

// CatalogHandler serves the product pages for customers and admins
type CatalogHandler struct {
	catalog *services.CatalogStore
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *services.CatalogStore) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List loads a product page. Query parameters given on the request replace
// the matching active filters; the rest carry over.
// @Summary List products
// @Description Load a product page; given query parameters replace the active filters
// @Tags Products
// @Produce json
// @Param page query integer false "Page number"
// @Param limit query integer false "Items per page"
// @Param category query string false "Category filter"
// @Param search query string false "Title search"
// @Param sortBy query string false "Sort field"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /customer/products [get]
// @Router /admin/products [get]
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	q := h.catalog.Filters()
	if err := decodeQuery(c, &q); err != nil {
		return response.BadRequest(c, "Invalid query parameters")
	}

	if err := h.catalog.List(c.UserContext(), q); err != nil {
		return fail(c, err, "Failed to fetch products")
	}
	return response.Success(c, "", h.catalog.Snapshot())
}

// ClearFilters resets search, category and sorting, then reloads
// @Summary Clear filters
// @Description Reset search, category and sorting, then reload
// @Tags Products
// @Produce json
// @Success 200 {object} response.Response
// @Router /customer/products/filters [delete]
func (h *CatalogHandler) ClearFilters(c *fiber.Ctx) error {
	h.catalog.ClearFilters()
	if err := h.catalog.Reload(c.UserContext()); err != nil {
		return fail(c, err, "Failed to fetch products")
	}
	return response.Success(c, "", h.catalog.Snapshot())
}

// Get loads one product
// @Summary Get product
// @Description Load one product
// @Tags Products
// @Produce json
// @Param id path string true "ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customer/products/{id} [get]
// @Router /admin/products/{id} [get]
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	if err := h.catalog.GetByID(c.UserContext(), param(c, "id")); err != nil {
		return fail(c, err, "Failed to fetch product")
	}
	return response.Success(c, "", h.catalog.Current())
}

// Create adds a product
// @Summary Create product
// @Description Add a product (admin)
// @Tags Products
// @Accept json
// @Produce json
// @Param body body domain.CreateProductRequest true "Product data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/products [post]
func (h *CatalogHandler) Create(c *fiber.Ctx) error {
	var req domain.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	product, err := h.catalog.Create(c.UserContext(), req)
	if err != nil {
		return fail(c, err, "Failed to create product")
	}
	return response.Created(c, "Product created", product)
}

// Update edits a product
// @Summary Update product
// @Description Edit a product (admin)
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "ID"
// @Param body body domain.UpdateProductRequest true "Changed fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/products/{id} [put]
func (h *CatalogHandler) Update(c *fiber.Ctx) error {
	var req domain.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	product, err := h.catalog.Update(c.UserContext(), param(c, "id"), req)
	if err != nil {
		return fail(c, err, "Failed to update product")
	}
	return response.Success(c, "Product updated", product)
}

// Delete removes a product
// @Summary Delete product
// @Description Remove a product (admin)
// @Tags Products
// @Produce json
// @Param id path string true "ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/products/{id} [delete]
func (h *CatalogHandler) Delete(c *fiber.Ctx) error {
	if err := h.catalog.Delete(c.UserContext(), param(c, "id")); err != nil {
		return fail(c, err, "Failed to delete product")
	}
	return response.Success(c, "Product deleted", nil)
}
