package handler

import (
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/service"
	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	Handler
	reviews *service.ReviewService
}

func NewReviewHandler(s *server.Server, reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		Handler: NewHandler(s),
		reviews: reviews,
	}
}

func (h *ReviewHandler) List(c echo.Context, req *model.SlugPageRequest) (*model.ReviewList, error) {
	return h.reviews.List(c.Request().Context(), req.Slug, req.PageQuery)
}

func (h *ReviewHandler) Create(c echo.Context, req *model.CreateReviewRequest) (*model.Review, error) {
	return h.reviews.Create(c.Request().Context(), principal(c), req)
}

// Delete is allowed for the author and for admins.
func (h *ReviewHandler) Delete(c echo.Context, req *model.IDRequest) error {
	return h.reviews.Delete(c.Request().Context(), principal(c), req.ID)
}
