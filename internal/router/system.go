package router

import (
	"github.com/kelvin262292/storefront/internal/handler"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes mounts health, docs and static files, including the
// uploaded 3D assets.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
	r.Static("/static", handler.StaticDir)
	r.Static(s.Storage.PublicPrefix(), s.Storage.Dir())
}
