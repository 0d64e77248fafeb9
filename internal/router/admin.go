package router

import (
	"net/http"

	"github.com/kelvin262292/storefront/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerAdminRoutes mounts catalogue management, order fulfilment and the
// dashboard. g already requires an admin session.
func registerAdminRoutes(g *echo.Group, h *handler.Handlers) {
	g.GET("/stats", handler.Handle(h.Admin.Handler, h.Admin.Stats, http.StatusOK))

	products := h.Products
	g.GET("/products", handler.Handle(products.Handler, products.AdminList, http.StatusOK))
	g.POST("/products", handler.Handle(products.Handler, products.Create, http.StatusCreated))
	g.GET("/products/:id", handler.Handle(products.Handler, products.AdminGet, http.StatusOK))
	g.PATCH("/products/:id", handler.Handle(products.Handler, products.Update, http.StatusOK))
	g.DELETE("/products/:id", handler.HandleNoContent(products.Handler, products.Delete, http.StatusNoContent))

	models := h.Models
	g.PUT("/products/:id/model", handler.Handle(models.Handler, models.Upsert, http.StatusOK))
	g.POST("/products/:id/model/upload", handler.Handle(models.Handler, models.Upload, http.StatusCreated))
	g.DELETE("/products/:id/model", handler.HandleNoContent(models.Handler, models.Delete, http.StatusNoContent))

	catalog := h.Catalog
	g.POST("/brands", handler.Handle(catalog.Handler, catalog.CreateBrand, http.StatusCreated))
	g.PATCH("/brands/:id", handler.Handle(catalog.Handler, catalog.UpdateBrand, http.StatusOK))
	g.DELETE("/brands/:id", handler.HandleNoContent(catalog.Handler, catalog.DeleteBrand, http.StatusNoContent))
	g.POST("/categories", handler.Handle(catalog.Handler, catalog.CreateCategory, http.StatusCreated))
	g.PATCH("/categories/:id", handler.Handle(catalog.Handler, catalog.UpdateCategory, http.StatusOK))
	g.DELETE("/categories/:id", handler.HandleNoContent(catalog.Handler, catalog.DeleteCategory, http.StatusNoContent))

	orders := h.Orders
	g.GET("/orders", handler.Handle(orders.Handler, orders.AdminList, http.StatusOK))
	g.GET("/orders/:number", handler.Handle(orders.Handler, orders.Get, http.StatusOK))
	g.PATCH("/orders/:number/status", handler.Handle(orders.Handler, orders.UpdateStatus, http.StatusOK))

	g.GET("/users", handler.Handle(h.Users.Handler, h.Users.List, http.StatusOK))
}
