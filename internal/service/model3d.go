package service

import (
	"context"
	"io"

	"github.com/kelvin262292/storefront/internal/errs"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/repository"
	"github.com/kelvin262292/storefront/internal/server"
)

// ModelService manages product 3D assets and the viewer configuration
// derived from them.
type ModelService struct {
	server   *server.Server
	repos    *repository.Repositories
	products *ProductService
}

func NewModelService(s *server.Server, repos *repository.Repositories, products *ProductService) *ModelService {
	return &ModelService{server: s, repos: repos, products: products}
}

// Viewer returns the viewer configuration for an active product.
func (m *ModelService) Viewer(ctx context.Context, slug string) (*model.ViewerConfig, error) {
	product, err := m.repos.Products.GetBySlug(ctx, slug, false)
	if err != nil {
		return nil, err
	}
	if product.Model3D == nil {
		return nil, errs.NewNotFoundError("This product has no 3D model", true, errs.Code("MODEL_NOT_FOUND"))
	}

	cfg := model.BuildViewerConfig(product, product.Model3D)
	return &cfg, nil
}

// Upsert stores viewer metadata. When the asset URL changes away from a
// locally stored file, that file is removed.
func (m *ModelService) Upsert(ctx context.Context, req *model.UpsertModelRequest) (*model.ProductModel, error) {
	product, err := m.repos.Products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	next := &model.ProductModel{
		ProductID:        product.ID,
		AssetURL:         req.AssetURL,
		Format:           req.Format,
		SizeBytes:        req.SizeBytes,
		PosterURL:        req.PosterURL,
		CameraOrbit:      req.CameraOrbit,
		CameraTarget:     req.CameraTarget,
		FieldOfView:      req.FieldOfView,
		Exposure:         req.Exposure,
		ShadowIntensity:  req.ShadowIntensity,
		EnvironmentImage: req.EnvironmentImage,
		AutoRotate:       req.AutoRotate,
		ARModes:          req.ARModes,
	}

	return m.save(ctx, product, next)
}

// Upload stores a glTF or GLB file for the product and points its model at
// it. Existing viewer settings are kept.
func (m *ModelService) Upload(ctx context.Context, productID uint, r io.Reader) (*model.ProductModel, error) {
	product, err := m.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	asset, err := m.server.Storage.SaveModel(ctx, product.ID, r)
	if err != nil {
		return nil, err
	}

	next := &model.ProductModel{ProductID: product.ID}
	if product.Model3D != nil {
		*next = *product.Model3D
		next.ID = 0
	}
	next.AssetURL = asset.URL
	next.Format = asset.Format
	next.SizeBytes = asset.SizeBytes

	saved, err := m.save(ctx, product, next)
	if err != nil {
		if delErr := m.server.Storage.Delete(asset.URL); delErr != nil {
			m.server.Logger.Warn().Err(delErr).Str("asset", asset.URL).Msg("failed to remove orphaned upload")
		}
		return nil, err
	}

	m.server.Logger.Info().
		Uint("product_id", product.ID).
		Str("asset", asset.URL).
		Str("content_type", asset.ContentType).
		Int64("size_bytes", asset.SizeBytes).
		Msg("model uploaded")
	return saved, nil
}

// Delete removes the model metadata and its stored file.
func (m *ModelService) Delete(ctx context.Context, productID uint) error {
	product, err := m.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product.Model3D == nil {
		return errs.NewNotFoundError("This product has no 3D model", true, errs.Code("MODEL_NOT_FOUND"))
	}

	if err := m.repos.Models.DeleteByProductID(ctx, productID); err != nil {
		return err
	}

	m.removeAsset(product.Model3D.AssetURL)
	m.products.invalidate(ctx, product.Slug)
	return nil
}

func (m *ModelService) save(ctx context.Context, product *model.Product, next *model.ProductModel) (*model.ProductModel, error) {
	if err := m.repos.Models.Upsert(ctx, next); err != nil {
		return nil, err
	}

	if prev := product.Model3D; prev != nil && prev.AssetURL != next.AssetURL {
		m.removeAsset(prev.AssetURL)
	}
	m.products.invalidate(ctx, product.Slug)

	return m.repos.Models.GetByProductID(ctx, product.ID)
}

func (m *ModelService) removeAsset(url string) {
	if !m.server.Storage.Owns(url) {
		return
	}
	if err := m.server.Storage.Delete(url); err != nil {
		m.server.Logger.Warn().Err(err).Str("asset", url).Msg("failed to delete model asset")
	}
}
