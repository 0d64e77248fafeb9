package handler

import (
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/service"
	"github.com/labstack/echo/v4"
)

type ProductHandler struct {
	Handler
	products *service.ProductService
}

func NewProductHandler(s *server.Server, products *service.ProductService) *ProductHandler {
	return &ProductHandler{
		Handler:  NewHandler(s),
		products: products,
	}
}

// List is the public catalogue search. Inactive products are never listed.
func (h *ProductHandler) List(c echo.Context, q *model.ListProductsQuery) (*model.PaginatedResponse[model.Product], error) {
	q.IncludeInactive = false
	return h.products.List(c.Request().Context(), q)
}

func (h *ProductHandler) Get(c echo.Context, req *model.SlugRequest) (*model.ProductDetail, error) {
	return h.products.Get(c.Request().Context(), req.Slug)
}

// AdminList includes inactive products.
func (h *ProductHandler) AdminList(c echo.Context, q *model.ListProductsQuery) (*model.PaginatedResponse[model.Product], error) {
	q.IncludeInactive = true
	return h.products.List(c.Request().Context(), q)
}

func (h *ProductHandler) AdminGet(c echo.Context, req *model.IDRequest) (*model.ProductDetail, error) {
	return h.products.GetByID(c.Request().Context(), req.ID)
}

func (h *ProductHandler) Create(c echo.Context, req *model.CreateProductRequest) (*model.ProductDetail, error) {
	return h.products.Create(c.Request().Context(), req)
}

func (h *ProductHandler) Update(c echo.Context, req *model.UpdateProductRequest) (*model.ProductDetail, error) {
	return h.products.Update(c.Request().Context(), req)
}

func (h *ProductHandler) Delete(c echo.Context, req *model.IDRequest) error {
	return h.products.Delete(c.Request().Context(), req.ID)
}
