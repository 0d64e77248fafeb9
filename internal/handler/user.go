package handler

import (
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/service"
	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	Handler
	users *service.UserService
}

func NewUserHandler(s *server.Server, users *service.UserService) *UserHandler {
	return &UserHandler{
		Handler: NewHandler(s),
		users:   users,
	}
}

// Me returns the caller's profile, provisioning it on first use.
func (h *UserHandler) Me(c echo.Context, _ *model.EmptyRequest) (*model.User, error) {
	return h.users.EnsureUser(c.Request().Context(), principal(c))
}

func (h *UserHandler) UpdateMe(c echo.Context, req *model.UpdateProfileRequest) (*model.User, error) {
	return h.users.UpdateProfile(c.Request().Context(), principal(c), req)
}

func (h *UserHandler) List(c echo.Context, q *model.ListUsersQuery) (*model.PaginatedResponse[model.User], error) {
	return h.users.List(c.Request().Context(), q)
}
