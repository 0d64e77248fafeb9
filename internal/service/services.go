package service

import (
	"github.com/kelvin262292/storefront/internal/lib/email"
	"github.com/kelvin262292/storefront/internal/lib/job"
	"github.com/kelvin262292/storefront/internal/repository"
	"github.com/kelvin262292/storefront/internal/server"
)

type Services struct {
	Auth       *AuthService
	Users      *UserService
	Products   *ProductService
	Brands     *BrandService
	Categories *CategoryService
	Reviews    *ReviewService
	Carts      *CartService
	Checkout   *CheckoutService
	Orders     *OrderService
	Models     *ModelService
	Admin      *AdminService
	Job        *job.JobService
	Mailer     Mailer

	repos *repository.Repositories
}

// NewService builds every service on top of s and repos. Tasks are
// enqueued on s.Job; a nil job service drops them.
func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return newServices(s, repos, s.Job, email.NewClient(s.Config, s.Logger)), nil
}

func newServices(s *server.Server, repos *repository.Repositories, jobs job.Enqueuer, mailer Mailer) *Services {
	auth := NewAuthService(s)
	users := NewUserService(s, repos, auth)
	products := NewProductService(s, repos)
	carts := NewCartService(s, repos)

	return &Services{
		Auth:       auth,
		Users:      users,
		Products:   products,
		Brands:     NewBrandService(s, repos),
		Categories: NewCategoryService(s, repos),
		Reviews:    NewReviewService(s, repos, users, jobs),
		Carts:      carts,
		Checkout:   NewCheckoutService(s, repos, users, carts, products, jobs),
		Orders:     NewOrderService(s, repos, users, products, jobs),
		Models:     NewModelService(s, repos, products),
		Admin:      NewAdminService(s, repos),
		Job:        s.Job,
		Mailer:     mailer,
		repos:      repos,
	}
}
