package repository

import (
	"context"

	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/sqlerr"
	"gorm.io/gorm"
)

type BrandRepository struct {
	base
}

func (r *BrandRepository) List(ctx context.Context) ([]model.Brand, error) {
	brands := []model.Brand{}
	err := r.db(ctx).Order("name ASC, id ASC").Find(&brands).Error
	return brands, err
}

func (r *BrandRepository) GetBySlug(ctx context.Context, slug string) (*model.Brand, error) {
	var brand model.Brand
	if err := r.db(ctx).Where("slug = ?", slug).First(&brand).Error; err != nil {
		return nil, notFound(err, "brand")
	}
	return &brand, nil
}

func (r *BrandRepository) GetByID(ctx context.Context, id uint) (*model.Brand, error) {
	var brand model.Brand
	if err := r.db(ctx).First(&brand, id).Error; err != nil {
		return nil, notFound(err, "brand")
	}
	return &brand, nil
}

func (r *BrandRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := r.db(ctx).Model(&model.Brand{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

func (r *BrandRepository) Create(ctx context.Context, brand *model.Brand) error {
	return r.db(ctx).Create(brand).Error
}

func (r *BrandRepository) Save(ctx context.Context, brand *model.Brand) error {
	return r.db(ctx).Save(brand).Error
}

// Delete removes the brand; its products keep existing without a brand.
func (r *BrandRepository) Delete(ctx context.Context, id uint) error {
	res := r.db(ctx).Delete(&model.Brand{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return sqlerr.NotFound("brand")
	}
	return nil
}

type CategoryRepository struct {
	base
}

// List returns all categories with their parent, roots first.
func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	err := r.db(ctx).
		Preload("Parent").
		Order("CASE WHEN parent_id IS NULL THEN 0 ELSE 1 END, name ASC, id ASC").
		Find(&categories).Error
	return categories, err
}

// GetBySlug loads a category with its parent and direct children.
func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var category model.Category
	err := r.db(ctx).
		Preload("Parent").
		Preload("Children", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Where("slug = ?", slug).
		First(&category).Error
	if err != nil {
		return nil, notFound(err, "category")
	}
	return &category, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db(ctx).First(&category, id).Error; err != nil {
		return nil, notFound(err, "category")
	}
	return &category, nil
}

func (r *CategoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := r.db(ctx).Model(&model.Category{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.db(ctx).Omit("Parent", "Children").Create(category).Error
}

func (r *CategoryRepository) Save(ctx context.Context, category *model.Category) error {
	return r.db(ctx).Omit("Parent", "Children").Save(category).Error
}

// Delete removes the category. Children become roots and products become
// uncategorised through ON DELETE SET NULL.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db(ctx).Delete(&model.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return sqlerr.NotFound("category")
	}
	return nil
}
