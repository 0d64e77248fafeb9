package handler

import (
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/service"
	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	Handler
	orders *service.OrderService
}

func NewOrderHandler(s *server.Server, orders *service.OrderService) *OrderHandler {
	return &OrderHandler{
		Handler: NewHandler(s),
		orders:  orders,
	}
}

// List returns the caller's own orders.
func (h *OrderHandler) List(c echo.Context, q *model.ListOrdersQuery) (*model.PaginatedResponse[model.Order], error) {
	return h.orders.List(c.Request().Context(), principal(c), q)
}

func (h *OrderHandler) Get(c echo.Context, req *model.OrderNumberRequest) (*model.Order, error) {
	return h.orders.Get(c.Request().Context(), principal(c), req.Number)
}

func (h *OrderHandler) Cancel(c echo.Context, req *model.OrderNumberRequest) (*model.Order, error) {
	return h.orders.Cancel(c.Request().Context(), principal(c), req.Number)
}

func (h *OrderHandler) AdminList(c echo.Context, q *model.ListOrdersQuery) (*model.PaginatedResponse[model.Order], error) {
	return h.orders.ListAll(c.Request().Context(), q)
}

func (h *OrderHandler) UpdateStatus(c echo.Context, req *model.UpdateOrderStatusRequest) (*model.Order, error) {
	return h.orders.UpdateStatus(c.Request().Context(), req)
}
