package router

import (
	"net/http"

	"github.com/kelvin262292/storefront/internal/handler"
	"github.com/kelvin262292/storefront/internal/middleware"
	"github.com/labstack/echo/v4"
)

// registerCatalogRoutes mounts the public catalogue.
func registerCatalogRoutes(g *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	products := h.Products
	g.GET("/products", handler.Handle(products.Handler, products.List, http.StatusOK))
	g.GET("/products/:slug", handler.Handle(products.Handler, products.Get, http.StatusOK))
	g.GET("/products/:slug/model", handler.Handle(h.Models.Handler, h.Models.Viewer, http.StatusOK))

	reviews := h.Reviews
	g.GET("/products/:slug/reviews", handler.Handle(reviews.Handler, reviews.List, http.StatusOK))
	g.POST("/products/:slug/reviews", handler.Handle(reviews.Handler, reviews.Create, http.StatusCreated),
		m.Auth.RequireAuth, m.RateLimit.Limit("reviews"))
	g.DELETE("/reviews/:id", handler.HandleNoContent(reviews.Handler, reviews.Delete, http.StatusNoContent),
		m.Auth.RequireAuth)

	catalog := h.Catalog
	g.GET("/brands", handler.Handle(catalog.Handler, catalog.ListBrands, http.StatusOK))
	g.GET("/brands/:slug", handler.Handle(catalog.Handler, catalog.GetBrand, http.StatusOK))
	g.GET("/categories", handler.Handle(catalog.Handler, catalog.ListCategories, http.StatusOK))
	g.GET("/categories/:slug", handler.Handle(catalog.Handler, catalog.GetCategory, http.StatusOK))
}

// registerShopperRoutes mounts the cart, checkout, orders and profile.
// Carts work for guests; everything that creates or reads orders needs a
// session.
func registerShopperRoutes(g *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	carts := h.Carts
	cart := g.Group("/cart", m.Auth.OptionalAuth)
	cart.GET("", handler.Handle(carts.Handler, carts.Get, http.StatusOK))
	cart.DELETE("", handler.Handle(carts.Handler, carts.Clear, http.StatusOK))
	cart.POST("/items", handler.Handle(carts.Handler, carts.AddItem, http.StatusOK))
	cart.PATCH("/items/:productId", handler.Handle(carts.Handler, carts.UpdateItem, http.StatusOK))
	cart.DELETE("/items/:productId", handler.Handle(carts.Handler, carts.RemoveItem, http.StatusOK))

	checkout := h.Checkout
	g.POST("/checkout/steps/:step", handler.Handle(checkout.Handler, checkout.ValidateStep, http.StatusOK),
		m.Auth.OptionalAuth)
	g.POST("/checkout", handler.Handle(checkout.Handler, checkout.PlaceOrder, http.StatusCreated),
		m.Auth.RequireAuth, m.RateLimit.Limit("checkout"))

	orders := h.Orders
	mine := g.Group("/orders", m.Auth.RequireAuth)
	mine.GET("", handler.Handle(orders.Handler, orders.List, http.StatusOK))
	mine.GET("/:number", handler.Handle(orders.Handler, orders.Get, http.StatusOK))
	mine.POST("/:number/cancel", handler.Handle(orders.Handler, orders.Cancel, http.StatusOK))

	users := h.Users
	me := g.Group("/me", m.Auth.RequireAuth)
	me.GET("", handler.Handle(users.Handler, users.Me, http.StatusOK))
	me.PATCH("", handler.Handle(users.Handler, users.UpdateMe, http.StatusOK))
}
