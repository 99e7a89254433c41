package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/distributor-orders/internal/export"
	"github.com/iliyamo/distributor-orders/internal/middleware"
	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/service"
)

// OrderHandler serves /orders.
type OrderHandler struct {
	Orders *service.OrderService
}

// NewOrderHandler wires the order service into the HTTP layer.
func NewOrderHandler(o *service.OrderService) *OrderHandler {
	return &OrderHandler{Orders: o}
}

type statusReq struct {
	Status model.OrderStatus `json:"status"`
}

type typeReq struct {
	OrderType model.FulfillmentType `json:"orderType"`
}

func orderQuery(c echo.Context) service.OrderQuery {
	return service.OrderQuery{
		DateFrom:  c.QueryParam("dateFrom"),
		DateTo:    c.QueryParam("dateTo"),
		OrderType: c.QueryParam("orderType"),
		Page:      c.QueryParam("page"),
		Limit:     c.QueryParam("limit"),
	}
}

// Create places an order owned by the caller.
func (h *OrderHandler) Create(c echo.Context) error {
	var req service.PlaceOrderInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	o, err := h.Orders.PlaceOrder(ctx, middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, o)
}

// List is the paginated admin listing.
func (h *OrderHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	page, err := h.Orders.ListOrders(ctx, orderQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Mine returns the caller's own orders.
func (h *OrderHandler) Mine(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	orders, err := h.Orders.ListOwnOrders(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// UpdateStatus: admin moves an order along its workflow.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	o, err := h.Orders.UpdateStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

// UpdateType: switch between delivery and bilti.
func (h *OrderHandler) UpdateType(c echo.Context) error {
	var req typeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	o, err := h.Orders.UpdateFulfillmentType(ctx, c.Param("id"), req.OrderType)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

// Export returns every order matching the listing filters as an xlsx
// workbook. The workbook is built in memory so a failure still yields
// a JSON error.
func (h *OrderHandler) Export(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	orders, err := h.Orders.ExportOrders(ctx, orderQuery(c))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteOrders(&buf, orders); err != nil {
		return err
	}
	name := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}
