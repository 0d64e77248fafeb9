package handler

import (
	"fmt"

	"github.com/kelvin262292/storefront/internal/errs"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/service"
	"github.com/labstack/echo/v4"
)

// ModelFormField is the multipart field carrying an uploaded 3D model.
const ModelFormField = "file"

type ModelHandler struct {
	Handler
	models *service.ModelService
}

func NewModelHandler(s *server.Server, models *service.ModelService) *ModelHandler {
	return &ModelHandler{
		Handler: NewHandler(s),
		models:  models,
	}
}

// Viewer returns the <model-viewer> settings for a product page.
func (h *ModelHandler) Viewer(c echo.Context, req *model.SlugRequest) (*model.ViewerConfig, error) {
	return h.models.Viewer(c.Request().Context(), req.Slug)
}

func (h *ModelHandler) Upsert(c echo.Context, req *model.UpsertModelRequest) (*model.ProductModel, error) {
	return h.models.Upsert(c.Request().Context(), req)
}

// Upload stores a .glb or .gltf file sent as multipart form data.
func (h *ModelHandler) Upload(c echo.Context, req *model.UploadModelRequest) (*model.ProductModel, error) {
	header, err := c.FormFile(ModelFormField)
	if err != nil {
		code := "MODEL_FILE_REQUIRED"
		return nil, errs.NewBadRequestError(
			fmt.Sprintf("A model file is required in the %q form field", ModelFormField),
			true, &code, nil, nil,
		)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	return h.models.Upload(c.Request().Context(), req.ProductID, file)
}

func (h *ModelHandler) Delete(c echo.Context, req *model.UploadModelRequest) error {
	return h.models.Delete(c.Request().Context(), req.ProductID)
}
