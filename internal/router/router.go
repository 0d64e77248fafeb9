// Package router builds the Echo instance: global middleware, the error
// handler and every route group.
package router

import (
	"github.com/kelvin262292/storefront/internal/handler"
	"github.com/kelvin262292/storefront/internal/middleware"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter registers h on a new Echo instance.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	m := middleware.NewMiddlewares(s)

	r := echo.New()
	r.HideBanner = true
	r.HidePort = true
	r.HTTPErrorHandler = m.Global.GlobalErrorHandler

	r.Use(
		middleware.RequestID(),
		m.Tracing.NewRelicMiddleware(),
		m.Tracing.EnhanceTracing(),
		m.ContextEnhancer.EnhanceContext(),
		m.Global.CORS(),
		m.Global.Secure(),
		m.Global.BodyLimit(),
		m.Global.RequestLogger(),
		m.Global.Recover(),
	)

	registerSystemRoutes(r, s, h)

	v1 := r.Group("/api/v1")
	registerCatalogRoutes(v1, h, m)
	registerShopperRoutes(v1, h, m)
	registerAdminRoutes(v1.Group("/admin", m.Auth.RequireAuth, m.Auth.RequireAdmin), h)

	return r
}
