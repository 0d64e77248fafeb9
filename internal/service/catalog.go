package service

import (
	"context"

	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/repository"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/sqlerr"
)

type BrandService struct {
	server *server.Server
	repos  *repository.Repositories
}

func NewBrandService(s *server.Server, repos *repository.Repositories) *BrandService {
	return &BrandService{server: s, repos: repos}
}

func (b *BrandService) List(ctx context.Context) ([]model.Brand, error) {
	return b.repos.Brands.List(ctx)
}

// Get returns the brand page with one page of its active products.
func (b *BrandService) Get(ctx context.Context, slug string, pq model.PageQuery) (*model.BrandDetail, error) {
	brand, err := b.repos.Brands.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	products, err := b.repos.Products.ListByBrand(ctx, slug, pq)
	if err != nil {
		return nil, err
	}

	return &model.BrandDetail{Brand: *brand, Products: products}, nil
}

func (b *BrandService) Create(ctx context.Context, req *model.CreateBrandRequest) (*model.Brand, error) {
	slug, err := resolveSlug(ctx, req.Slug, req.Name, "brand", b.repos.Brands.SlugExists)
	if err != nil {
		return nil, err
	}

	brand := &model.Brand{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		LogoURL:     req.LogoURL,
	}
	if err := b.repos.Brands.Create(ctx, brand); err != nil {
		if sqlerr.IsUniqueViolation(err) {
			return nil, alreadyExists("brand", "slug")
		}
		return nil, err
	}
	return brand, nil
}

func (b *BrandService) Update(ctx context.Context, req *model.UpdateBrandRequest) (*model.Brand, error) {
	brand, err := b.repos.Brands.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil && *req.Slug != brand.Slug {
		taken, err := b.repos.Brands.SlugExists(ctx, *req.Slug)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, alreadyExists("brand", "slug")
		}
		brand.Slug = *req.Slug
	}
	if req.Name != nil {
		brand.Name = *req.Name
	}
	if req.Description != nil {
		brand.Description = *req.Description
	}
	if req.LogoURL != nil {
		brand.LogoURL = *req.LogoURL
	}

	if err := b.repos.Brands.Save(ctx, brand); err != nil {
		if sqlerr.IsUniqueViolation(err) {
			return nil, alreadyExists("brand", "slug")
		}
		return nil, err
	}
	return brand, nil
}

func (b *BrandService) Delete(ctx context.Context, id uint) error {
	return b.repos.Brands.Delete(ctx, id)
}

type CategoryService struct {
	server *server.Server
	repos  *repository.Repositories
}

func NewCategoryService(s *server.Server, repos *repository.Repositories) *CategoryService {
	return &CategoryService{server: s, repos: repos}
}

func (c *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return c.repos.Categories.List(ctx)
}

// Get returns the category page. The product page includes products of
// direct child categories.
func (c *CategoryService) Get(ctx context.Context, slug string, pq model.PageQuery) (*model.CategoryDetail, error) {
	category, err := c.repos.Categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	products, err := c.repos.Products.ListByCategory(ctx, slug, pq)
	if err != nil {
		return nil, err
	}

	return &model.CategoryDetail{Category: *category, Products: products}, nil
}

func (c *CategoryService) Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	if req.ParentID != nil {
		if err := c.checkParent(ctx, 0, *req.ParentID); err != nil {
			return nil, err
		}
	}

	slug, err := resolveSlug(ctx, req.Slug, req.Name, "category", c.repos.Categories.SlugExists)
	if err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		ParentID:    req.ParentID,
	}
	if err := c.repos.Categories.Create(ctx, category); err != nil {
		if sqlerr.IsUniqueViolation(err) {
			return nil, alreadyExists("category", "slug")
		}
		return nil, err
	}
	return category, nil
}

func (c *CategoryService) Update(ctx context.Context, req *model.UpdateCategoryRequest) (*model.Category, error) {
	category, err := c.repos.Categories.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	switch {
	case req.ClearParent:
		category.ParentID = nil
	case req.ParentID != nil:
		if err := c.checkParent(ctx, category.ID, *req.ParentID); err != nil {
			return nil, err
		}
		category.ParentID = req.ParentID
	}

	if req.Slug != nil && *req.Slug != category.Slug {
		taken, err := c.repos.Categories.SlugExists(ctx, *req.Slug)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, alreadyExists("category", "slug")
		}
		category.Slug = *req.Slug
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}

	if err := c.repos.Categories.Save(ctx, category); err != nil {
		if sqlerr.IsUniqueViolation(err) {
			return nil, alreadyExists("category", "slug")
		}
		return nil, err
	}
	return category, nil
}

func (c *CategoryService) Delete(ctx context.Context, id uint) error {
	return c.repos.Categories.Delete(ctx, id)
}

// checkParent requires the parent to exist, differ from the category and
// not be one of its children. id is zero for a new category.
func (c *CategoryService) checkParent(ctx context.Context, id, parentID uint) error {
	if id != 0 && parentID == id {
		return invalidField("CATEGORY_INVALID_PARENT", "parentId", "a category cannot be its own parent")
	}

	parent, err := c.repos.Categories.GetByID(ctx, parentID)
	if err != nil {
		return referenceError(err, "CATEGORY_NOT_FOUND", "parentId", "parent category does not exist")
	}

	if id != 0 && parent.ParentID != nil && *parent.ParentID == id {
		return invalidField("CATEGORY_INVALID_PARENT", "parentId", "a category cannot be nested under its own child")
	}
	return nil
}
