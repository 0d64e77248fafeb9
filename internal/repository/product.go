package repository

import (
	"context"

	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/sqlerr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository struct {
	base
}

// ApplyProductFilters adds one WHERE clause per filter present in q. Absent
// filters add nothing, so an empty query lists every active product.
func ApplyProductFilters(db *gorm.DB, q *model.ListProductsQuery) *gorm.DB {
	if !q.IncludeInactive {
		db = db.Where("products.is_active = ?", true)
	}

	if q.Q != "" {
		pattern := likePattern(q.Q)
		db = db.Where(
			`(LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\' OR LOWER(products.sku) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}

	if q.Category != "" {
		// The category itself plus its direct children.
		db = db.Where(
			"products.category_id IN (SELECT c.id FROM categories c WHERE c.slug = ? OR c.parent_id IN (SELECT p.id FROM categories p WHERE p.slug = ?))",
			q.Category, q.Category,
		)
	}

	if q.Brand != "" {
		db = db.Where("products.brand_id IN (SELECT b.id FROM brands b WHERE b.slug = ?)", q.Brand)
	}

	if q.MinPrice != nil {
		db = db.Where("products.price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where("products.price <= ?", *q.MaxPrice)
	}

	if q.InStock != nil {
		if *q.InStock {
			db = db.Where("products.stock > 0")
		} else {
			db = db.Where("products.stock = 0")
		}
	}

	if q.HasModel != nil {
		exists := "EXISTS (SELECT 1 FROM product_models pm WHERE pm.product_id = products.id)"
		if *q.HasModel {
			db = db.Where(exists)
		} else {
			db = db.Where("NOT " + exists)
		}
	}

	if q.Featured != nil {
		db = db.Where("products.is_featured = ?", *q.Featured)
	}

	if q.MinRating != nil {
		db = db.Where("products.rating_avg >= ?", *q.MinRating)
	}

	return db
}

// ProductOrder returns the ORDER BY for a sort key. The id tiebreaker keeps
// pages stable when the primary key ties.
func ProductOrder(sort model.ProductSort) string {
	switch sort {
	case model.SortOldest:
		return "products.created_at ASC, products.id ASC"
	case model.SortPriceAsc:
		return "products.price ASC, products.id ASC"
	case model.SortPriceDesc:
		return "products.price DESC, products.id DESC"
	case model.SortRating:
		return "products.rating_avg DESC, products.review_count DESC, products.id DESC"
	case model.SortName:
		return "products.name ASC, products.id ASC"
	default:
		return "products.created_at DESC, products.id DESC"
	}
}

func orderImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// List returns one page of products matching q with brand, category, images
// and model metadata loaded.
func (r *ProductRepository) List(ctx context.Context, q *model.ListProductsQuery) (*model.PaginatedResponse[model.Product], error) {
	query := ApplyProductFilters(r.db(ctx).Model(&model.Product{}), q).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	p, l := q.Resolve()
	var products []model.Product
	err := query.
		Preload("Brand").
		Preload("Category").
		Preload("Images", orderImages).
		Preload("Model3D").
		Order(ProductOrder(q.Sort)).
		Scopes(paginate(p, l)).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	return toPage(products, q.PageQuery, total), nil
}

// ListByBrand and ListByCategory back the brand and category pages.
func (r *ProductRepository) ListByBrand(ctx context.Context, slug string, pq model.PageQuery) (*model.PaginatedResponse[model.Product], error) {
	return r.List(ctx, &model.ListProductsQuery{PageQuery: pq, Brand: slug})
}

func (r *ProductRepository) ListByCategory(ctx context.Context, slug string, pq model.PageQuery) (*model.PaginatedResponse[model.Product], error) {
	return r.List(ctx, &model.ListProductsQuery{PageQuery: pq, Category: slug})
}

func (r *ProductRepository) detail(ctx context.Context) *gorm.DB {
	return r.db(ctx).
		Preload("Brand").
		Preload("Category").
		Preload("Images", orderImages).
		Preload("Model3D")
}

// GetBySlug loads a product with everything the product page shows.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string, includeInactive bool) (*model.Product, error) {
	query := r.detail(ctx).Where("slug = ?", slug)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var product model.Product
	if err := query.First(&product).Error; err != nil {
		return nil, notFound(err, "product")
	}
	return &product, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.detail(ctx).First(&product, id).Error; err != nil {
		return nil, notFound(err, "product")
	}
	return &product, nil
}

// GetForUpdate loads bare product rows and locks them until the surrounding
// transaction ends. SQLite ignores the locking clause.
func (r *ProductRepository) GetForUpdate(ctx context.Context, ids []uint) (map[uint]*model.Product, error) {
	var products []model.Product
	query := r.db(ctx).Where("id IN ?", ids).Order("id ASC")
	if query.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return byID, nil
}

func (r *ProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := r.db(ctx).Model(&model.Product{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

// Slugs returns the current slugs of the given products.
func (r *ProductRepository) Slugs(ctx context.Context, ids []uint) ([]string, error) {
	var slugs []string
	if len(ids) == 0 {
		return slugs, nil
	}
	err := r.db(ctx).Model(&model.Product{}).Where("id IN ?", ids).Pluck("slug", &slugs).Error
	return slugs, err
}

// Create inserts the product and its images.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db(ctx).Omit("Brand", "Category", "Model3D").Create(product).Error
}

// Save writes the product row. When images is non-nil the gallery is
// replaced with it.
func (r *ProductRepository) Save(ctx context.Context, product *model.Product, images []model.ProductImage) error {
	db := r.db(ctx)

	if err := db.Omit(clause.Associations).Save(product).Error; err != nil {
		return err
	}

	if images == nil {
		return nil
	}

	if err := db.Where("product_id = ?", product.ID).Delete(&model.ProductImage{}).Error; err != nil {
		return err
	}
	for i := range images {
		images[i].ProductID = product.ID
	}
	if len(images) > 0 {
		if err := db.Create(&images).Error; err != nil {
			return err
		}
	}
	product.Images = images
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return sqlerr.NotFound("product")
	}
	return nil
}

// DecrementStock takes qty units if, and only if, that many are left. It
// reports whether the row was updated.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	return res.RowsAffected == 1, res.Error
}

func (r *ProductRepository) IncrementStock(ctx context.Context, id uint, qty int) error {
	return r.db(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}

// SetRating stores the denormalised review aggregate.
func (r *ProductRepository) SetRating(ctx context.Context, id uint, avg float64, count int64) error {
	return r.db(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"rating_avg": avg, "review_count": count}).Error
}
