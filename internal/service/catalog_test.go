package service

import (
	"net/http"
	"testing"

	"github.com/kelvin262292/storefront/internal/lib/utils"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_ParentRules(t *testing.T) {
	e := newEnv(t)

	root, err := e.svc.Categories.Create(e.ctx, &model.CreateCategoryRequest{Name: "Home Decor"})
	require.NoError(t, err)
	assert.Equal(t, "home-decor", root.Slug)

	child, err := e.svc.Categories.Create(e.ctx, &model.CreateCategoryRequest{Name: "Vases", ParentID: &root.ID})
	require.NoError(t, err)

	_, err = e.svc.Categories.Create(e.ctx, &model.CreateCategoryRequest{Name: "Orphan", ParentID: utils.Ptr(uint(999))})
	he := httpErr(t, err, http.StatusBadRequest)
	assert.Equal(t, "CATEGORY_NOT_FOUND", he.Code)

	_, err = e.svc.Categories.Update(e.ctx, &model.UpdateCategoryRequest{ID: root.ID, ParentID: &child.ID})
	he = httpErr(t, err, http.StatusBadRequest)
	assert.Equal(t, "CATEGORY_INVALID_PARENT", he.Code)

	_, err = e.svc.Categories.Update(e.ctx, &model.UpdateCategoryRequest{ID: root.ID, ParentID: &root.ID})
	httpErr(t, err, http.StatusBadRequest)

	moved, err := e.svc.Categories.Update(e.ctx, &model.UpdateCategoryRequest{ID: child.ID, ClearParent: true})
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
}

func TestCategory_GetIncludesChildProducts(t *testing.T) {
	e := newEnv(t)
	root, err := e.svc.Categories.Create(e.ctx, &model.CreateCategoryRequest{Name: "Kitchen"})
	require.NoError(t, err)
	child, err := e.svc.Categories.Create(e.ctx, &model.CreateCategoryRequest{Name: "Knives", ParentID: &root.ID})
	require.NoError(t, err)

	e.product(t, "Chef Knife", "60", 2, func(p *model.Product) { p.CategoryID = &child.ID })
	e.product(t, "Pan", "40", 2, func(p *model.Product) { p.CategoryID = &root.ID })

	detail, err := e.svc.Categories.Get(e.ctx, "kitchen", model.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), detail.Products.Total)
	require.Len(t, detail.Children, 1)
	assert.Equal(t, "knives", detail.Children[0].Slug)
}

func TestBrand_CreateUpdateDelete(t *testing.T) {
	e := newEnv(t)

	brand, err := e.svc.Brands.Create(e.ctx, &model.CreateBrandRequest{Name: "Acme Co."})
	require.NoError(t, err)
	assert.Equal(t, "acme-co", brand.Slug)

	_, err = e.svc.Brands.Create(e.ctx, &model.CreateBrandRequest{Name: "Other", Slug: "acme-co"})
	he := httpErr(t, err, http.StatusConflict)
	assert.Equal(t, "BRAND_ALREADY_EXISTS", he.Code)

	updated, err := e.svc.Brands.Update(e.ctx, &model.UpdateBrandRequest{ID: brand.ID, Description: utils.Ptr("Since 1949")})
	require.NoError(t, err)
	assert.Equal(t, "Acme Co.", updated.Name)
	assert.Equal(t, "Since 1949", updated.Description)

	e.product(t, "Anvil", "99", 1, func(p *model.Product) { p.BrandID = &brand.ID })
	detail, err := e.svc.Brands.Get(e.ctx, "acme-co", model.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.Products.Total)

	require.NoError(t, e.svc.Brands.Delete(e.ctx, brand.ID))
	httpErr(t, e.svc.Brands.Delete(e.ctx, brand.ID), http.StatusNotFound)
}
