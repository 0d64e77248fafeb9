package handler

import (
	"github.com/kelvin262292/storefront/internal/middleware"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/service"
	"github.com/labstack/echo/v4"
)

// CartHandler serves the shopping cart for guests and signed-in users.
// Guests are tracked by the X-Cart-Token header; the token of a new guest
// cart is returned in the same header.
type CartHandler struct {
	Handler
	carts *service.CartService
	users *service.UserService
}

func NewCartHandler(s *server.Server, carts *service.CartService, users *service.UserService) *CartHandler {
	return &CartHandler{
		Handler: NewHandler(s),
		carts:   carts,
		users:   users,
	}
}

func (h *CartHandler) Get(c echo.Context, _ *model.EmptyRequest) (*model.CartView, error) {
	return h.respond(c, func(owner service.CartOwner) (*model.CartView, error) {
		return h.carts.Get(c.Request().Context(), owner)
	})
}

func (h *CartHandler) AddItem(c echo.Context, req *model.AddCartItemRequest) (*model.CartView, error) {
	return h.respond(c, func(owner service.CartOwner) (*model.CartView, error) {
		return h.carts.AddItem(c.Request().Context(), owner, req)
	})
}

func (h *CartHandler) UpdateItem(c echo.Context, req *model.UpdateCartItemRequest) (*model.CartView, error) {
	return h.respond(c, func(owner service.CartOwner) (*model.CartView, error) {
		return h.carts.UpdateItem(c.Request().Context(), owner, req)
	})
}

func (h *CartHandler) RemoveItem(c echo.Context, req *model.RemoveCartItemRequest) (*model.CartView, error) {
	return h.respond(c, func(owner service.CartOwner) (*model.CartView, error) {
		return h.carts.RemoveItem(c.Request().Context(), owner, req.ProductID)
	})
}

func (h *CartHandler) Clear(c echo.Context, _ *model.EmptyRequest) (*model.CartView, error) {
	return h.respond(c, func(owner service.CartOwner) (*model.CartView, error) {
		return h.carts.Clear(c.Request().Context(), owner)
	})
}

func (h *CartHandler) respond(c echo.Context, fn func(owner service.CartOwner) (*model.CartView, error)) (*model.CartView, error) {
	owner, err := cartOwner(c, h.users)
	if err != nil {
		return nil, err
	}

	view, err := fn(owner)
	if err != nil {
		return nil, err
	}

	middleware.SetCartToken(c, view.Token)
	return view, nil
}

// cartOwner identifies the cart of the current request: the signed-in
// user's cart, with any guest token still presented so it can be merged.
func cartOwner(c echo.Context, users *service.UserService) (service.CartOwner, error) {
	owner := service.CartOwner{Token: middleware.GetCartToken(c)}

	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return owner, nil
	}

	u, err := users.EnsureUser(c.Request().Context(), p)
	if err != nil {
		return owner, err
	}
	owner.UserID = &u.ID
	return owner, nil
}
