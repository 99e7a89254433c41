package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/distributor-orders/internal/service"
)

// ProductHandler serves the catalog.
type ProductHandler struct {
	Products *service.ProductService
}

// NewProductHandler wires the product service into the HTTP layer.
func NewProductHandler(p *service.ProductService) *ProductHandler {
	return &ProductHandler{Products: p}
}

// List returns the catalog. ?code= looks up a single product and
// ?category= narrows by English category.
func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if code := strings.TrimSpace(c.QueryParam("code")); code != "" {
		p, err := h.Products.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, p)
	}
	products, err := h.Products.List(ctx, c.QueryParam("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// Get: one product by id.
func (h *ProductHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	p, err := h.Products.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create: admin only; the product code must be unused.
func (h *ProductHandler) Create(c echo.Context) error {
	var req service.ProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	p, err := h.Products.Create(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update applies the non-empty fields of the body.
func (h *ProductHandler) Update(c echo.Context) error {
	var req service.ProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	p, err := h.Products.Update(ctx, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete: removes the product and its hosted image.
func (h *ProductHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Products.Delete(ctx, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}
