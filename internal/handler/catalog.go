package handler

import (
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/service"
	"github.com/labstack/echo/v4"
)

// CatalogHandler serves brands and categories.
type CatalogHandler struct {
	Handler
	brands     *service.BrandService
	categories *service.CategoryService
}

func NewCatalogHandler(s *server.Server, brands *service.BrandService, categories *service.CategoryService) *CatalogHandler {
	return &CatalogHandler{
		Handler:    NewHandler(s),
		brands:     brands,
		categories: categories,
	}
}

func (h *CatalogHandler) ListBrands(c echo.Context, _ *model.EmptyRequest) ([]model.Brand, error) {
	return h.brands.List(c.Request().Context())
}

func (h *CatalogHandler) GetBrand(c echo.Context, req *model.SlugPageRequest) (*model.BrandDetail, error) {
	return h.brands.Get(c.Request().Context(), req.Slug, req.PageQuery)
}

func (h *CatalogHandler) CreateBrand(c echo.Context, req *model.CreateBrandRequest) (*model.Brand, error) {
	return h.brands.Create(c.Request().Context(), req)
}

func (h *CatalogHandler) UpdateBrand(c echo.Context, req *model.UpdateBrandRequest) (*model.Brand, error) {
	return h.brands.Update(c.Request().Context(), req)
}

func (h *CatalogHandler) DeleteBrand(c echo.Context, req *model.IDRequest) error {
	return h.brands.Delete(c.Request().Context(), req.ID)
}

func (h *CatalogHandler) ListCategories(c echo.Context, _ *model.EmptyRequest) ([]model.Category, error) {
	return h.categories.List(c.Request().Context())
}

func (h *CatalogHandler) GetCategory(c echo.Context, req *model.SlugPageRequest) (*model.CategoryDetail, error) {
	return h.categories.Get(c.Request().Context(), req.Slug, req.PageQuery)
}

func (h *CatalogHandler) CreateCategory(c echo.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	return h.categories.Create(c.Request().Context(), req)
}

func (h *CatalogHandler) UpdateCategory(c echo.Context, req *model.UpdateCategoryRequest) (*model.Category, error) {
	return h.categories.Update(c.Request().Context(), req)
}

func (h *CatalogHandler) DeleteCategory(c echo.Context, req *model.IDRequest) error {
	return h.categories.Delete(c.Request().Context(), req.ID)
}
