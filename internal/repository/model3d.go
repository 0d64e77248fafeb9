package repository

import (
	"context"

	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/sqlerr"
	"gorm.io/gorm/clause"
)

// ModelRepository stores 3D viewer metadata, one row per product.
type ModelRepository struct {
	base
}

func (r *ModelRepository) GetByProductID(ctx context.Context, productID uint) (*model.ProductModel, error) {
	var m model.ProductModel
	if err := r.db(ctx).Where("product_id = ?", productID).First(&m).Error; err != nil {
		return nil, notFound(err, "model")
	}
	return &m, nil
}

// Upsert inserts or replaces the metadata of m.ProductID.
func (r *ModelRepository) Upsert(ctx context.Context, m *model.ProductModel) error {
	return r.db(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"asset_url", "format", "size_bytes", "poster_url", "camera_orbit",
			"camera_target", "field_of_view", "exposure", "shadow_intensity",
			"environment_image", "auto_rotate", "ar_modes", "updated_at",
		}),
	}).Create(m).Error
}

func (r *ModelRepository) DeleteByProductID(ctx context.Context, productID uint) error {
	res := r.db(ctx).Where("product_id = ?", productID).Delete(&model.ProductModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return sqlerr.NotFound("model")
	}
	return nil
}
