package handler

import (
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Health   *HealthHandler
	OpenAPI  *OpenAPIHandler
	Products *ProductHandler
	Catalog  *CatalogHandler
	Reviews  *ReviewHandler
	Carts    *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrderHandler
	Users    *UserHandler
	Models   *ModelHandler
	Admin    *AdminHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(s),
		OpenAPI:  NewOpenAPIHandler(s),
		Products: NewProductHandler(s, services.Products),
		Catalog:  NewCatalogHandler(s, services.Brands, services.Categories),
		Reviews:  NewReviewHandler(s, services.Reviews),
		Carts:    NewCartHandler(s, services.Carts, services.Users),
		Checkout: NewCheckoutHandler(s, services.Checkout, services.Users),
		Orders:   NewOrderHandler(s, services.Orders),
		Users:    NewUserHandler(s, services.Users),
		Models:   NewModelHandler(s, services.Models),
		Admin:    NewAdminHandler(s, services.Admin),
	}
}
