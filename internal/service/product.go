package service

import (
	"context"
	"time"

	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/repository"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/sqlerr"
	"github.com/shopspring/decimal"
)

// ProductService serves the catalogue and its admin CRUD. Product pages
// are cached by slug.
type ProductService struct {
	server *server.Server
	repos  *repository.Repositories
	cache  productCache
}

// productCache is the part of cache.Cache the catalogue needs.
type productCache interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, v any, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

func NewProductService(s *server.Server, repos *repository.Repositories) *ProductService {
	return &ProductService{server: s, repos: repos, cache: s.Cache}
}

func productCacheKey(slug string) string {
	return "product:" + slug
}

func (p *ProductService) List(ctx context.Context, q *model.ListProductsQuery) (*model.PaginatedResponse[model.Product], error) {
	return p.repos.Products.List(ctx, q)
}

// Get returns the public product page for slug, from cache when possible.
func (p *ProductService) Get(ctx context.Context, slug string) (*model.ProductDetail, error) {
	var cached model.ProductDetail
	if p.cache.Get(ctx, productCacheKey(slug), &cached) {
		return &cached, nil
	}

	product, err := p.repos.Products.GetBySlug(ctx, slug, false)
	if err != nil {
		return nil, err
	}

	detail, err := p.detail(ctx, product)
	if err != nil {
		return nil, err
	}

	p.cache.Set(ctx, productCacheKey(slug), detail, p.server.Config.Cache.ProductTTL)
	return detail, nil
}

// GetByID is the admin view; inactive products are included and nothing
// is cached.
func (p *ProductService) GetByID(ctx context.Context, id uint) (*model.ProductDetail, error) {
	product, err := p.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.detail(ctx, product)
}

func (p *ProductService) detail(ctx context.Context, product *model.Product) (*model.ProductDetail, error) {
	summary, err := p.repos.Reviews.Summary(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	return &model.ProductDetail{Product: *product, Rating: summary}, nil
}

func (p *ProductService) Create(ctx context.Context, req *model.CreateProductRequest) (*model.ProductDetail, error) {
	if err := p.checkReferences(ctx, req.BrandID, req.CategoryID); err != nil {
		return nil, err
	}

	slug, err := resolveSlug(ctx, req.Slug, req.Name, "product", p.repos.Products.SlugExists)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        req.Name,
		Slug:        slug,
		SKU:         req.SKU,
		Description: req.Description,
		Price:       model.RoundMoney(req.Price),
		Stock:       req.Stock,
		IsActive:    req.IsActive == nil || *req.IsActive,
		IsFeatured:  req.IsFeatured,
		BrandID:     req.BrandID,
		CategoryID:  req.CategoryID,
		Images:      toImages(req.Images),
	}
	if req.CompareAtPrice != nil {
		product.CompareAtPrice = decimal.NewNullDecimal(model.RoundMoney(*req.CompareAtPrice))
	}

	if err := p.repos.Products.Create(ctx, product); err != nil {
		if sqlerr.IsUniqueViolation(err) {
			return nil, alreadyExists("product", "slug or SKU")
		}
		return nil, err
	}

	p.server.Logger.Info().Uint("product_id", product.ID).Str("slug", product.Slug).Msg("product created")
	return p.GetByID(ctx, product.ID)
}

// Update applies the fields present in req. The cached page is dropped for
// the old and the new slug.
func (p *ProductService) Update(ctx context.Context, req *model.UpdateProductRequest) (*model.ProductDetail, error) {
	product, err := p.repos.Products.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	oldSlug := product.Slug

	if err := p.checkReferences(ctx, req.BrandID, req.CategoryID); err != nil {
		return nil, err
	}

	if req.Slug != nil && *req.Slug != product.Slug {
		taken, err := p.repos.Products.SlugExists(ctx, *req.Slug)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, alreadyExists("product", "slug")
		}
		product.Slug = *req.Slug
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = model.RoundMoney(*req.Price)
	}
	if req.CompareAtPrice != nil {
		product.CompareAtPrice = decimal.NewNullDecimal(model.RoundMoney(*req.CompareAtPrice))
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}
	if req.BrandID != nil {
		product.BrandID = req.BrandID
		product.Brand = nil
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
		product.Category = nil
	}

	var images []model.ProductImage
	if req.Images != nil {
		images = toImages(*req.Images)
	}

	if err := p.repos.Products.Save(ctx, product, images); err != nil {
		if sqlerr.IsUniqueViolation(err) {
			return nil, alreadyExists("product", "slug or SKU")
		}
		return nil, err
	}

	p.invalidate(ctx, oldSlug, product.Slug)
	return p.GetByID(ctx, product.ID)
}

// Delete removes the product and any 3D asset stored for it.
func (p *ProductService) Delete(ctx context.Context, id uint) error {
	product, err := p.repos.Products.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := p.repos.Products.Delete(ctx, id); err != nil {
		return err
	}

	if product.Model3D != nil && p.server.Storage.Owns(product.Model3D.AssetURL) {
		if err := p.server.Storage.Delete(product.Model3D.AssetURL); err != nil {
			p.server.Logger.Warn().Err(err).Uint("product_id", id).Msg("failed to delete model asset")
		}
	}

	p.invalidate(ctx, product.Slug)
	return nil
}

// RecomputeRating refreshes the denormalised rating of a product from its
// reviews. A product deleted in the meantime is not an error.
func (p *ProductService) RecomputeRating(ctx context.Context, productID uint) error {
	summary, err := p.repos.Reviews.Summary(ctx, productID)
	if err != nil {
		return err
	}

	if err := p.repos.Products.SetRating(ctx, productID, summary.Average, summary.Count); err != nil {
		return err
	}

	product, err := p.repos.Products.GetByID(ctx, productID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	p.invalidate(ctx, product.Slug)
	return nil
}

func (p *ProductService) invalidate(ctx context.Context, slugs ...string) {
	keys := make([]string, 0, len(slugs))
	for _, s := range slugs {
		keys = append(keys, productCacheKey(s))
	}
	p.cache.Delete(ctx, keys...)
}

// StockChanged drops the cached pages of products whose stock moved. It
// runs after commit, so a failed lookup only leaves pages to expire.
func (p *ProductService) StockChanged(ctx context.Context, ids ...uint) {
	slugs, err := p.repos.Products.Slugs(ctx, ids)
	if err != nil {
		p.server.Logger.Warn().Err(err).Uints("product_ids", ids).Msg("could not resolve product slugs for cache invalidation")
		return
	}
	p.invalidate(ctx, slugs...)
}

// checkReferences turns a missing brand or category into a field error
// instead of a foreign key violation.
func (p *ProductService) checkReferences(ctx context.Context, brandID, categoryID *uint) error {
	if brandID != nil {
		if _, err := p.repos.Brands.GetByID(ctx, *brandID); err != nil {
			return referenceError(err, "BRAND_NOT_FOUND", "brandId", "brand does not exist")
		}
	}
	if categoryID != nil {
		if _, err := p.repos.Categories.GetByID(ctx, *categoryID); err != nil {
			return referenceError(err, "CATEGORY_NOT_FOUND", "categoryId", "category does not exist")
		}
	}
	return nil
}

func referenceError(err error, code, field, message string) error {
	if isNotFound(err) {
		return invalidField(code, field, message)
	}
	return err
}

func toImages(in []model.ImageInput) []model.ProductImage {
	images := make([]model.ProductImage, 0, len(in))
	for i, img := range in {
		images = append(images, model.ProductImage{
			URL:      img.URL,
			AltText:  img.AltText,
			Position: i,
		})
	}
	return images
}
