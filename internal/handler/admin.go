package handler

import (
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/service"
	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	Handler
	admin *service.AdminService
}

func NewAdminHandler(s *server.Server, admin *service.AdminService) *AdminHandler {
	return &AdminHandler{
		Handler: NewHandler(s),
		admin:   admin,
	}
}

// Stats returns the dashboard counters.
func (h *AdminHandler) Stats(c echo.Context, _ *model.EmptyRequest) (*model.DashboardStats, error) {
	return h.admin.Stats(c.Request().Context())
}
