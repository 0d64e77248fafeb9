package handler

import (
	"github.com/kelvin262292/storefront/internal/middleware"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/service"
	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	Handler
	checkout *service.CheckoutService
	users    *service.UserService
}

func NewCheckoutHandler(s *server.Server, checkout *service.CheckoutService, users *service.UserService) *CheckoutHandler {
	return &CheckoutHandler{
		Handler:  NewHandler(s),
		checkout: checkout,
		users:    users,
	}
}

// ValidateStep checks one step of the checkout form. The shipping step
// also returns a quote for the current cart.
func (h *CheckoutHandler) ValidateStep(c echo.Context, req *model.ValidateStepRequest) (*model.StepResult, error) {
	owner, err := cartOwner(c, h.users)
	if err != nil {
		return nil, err
	}
	return h.checkout.ValidateStep(c.Request().Context(), owner, req)
}

// PlaceOrder turns the caller's cart into a pending order.
func (h *CheckoutHandler) PlaceOrder(c echo.Context, req *model.CheckoutRequest) (*model.Order, error) {
	return h.checkout.PlaceOrder(c.Request().Context(), principal(c), middleware.GetCartToken(c), req)
}
