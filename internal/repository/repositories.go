package repository

import (
	"context"

	"github.com/kelvin262292/storefront/internal/server"
	"gorm.io/gorm"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Users      *UserRepository
	Brands     *BrandRepository
	Categories *CategoryRepository
	Products   *ProductRepository
	Models     *ModelRepository
	Reviews    *ReviewRepository
	Carts      *CartRepository
	Orders     *OrderRepository
	Stats      *StatsRepository

	server *server.Server
}

// NewRepositories constructs every repository on s.DB.
func NewRepositories(s *server.Server) *Repositories {
	b := base{server: s}
	return &Repositories{
		Users:      &UserRepository{b},
		Brands:     &BrandRepository{b},
		Categories: &CategoryRepository{b},
		Products:   &ProductRepository{b},
		Models:     &ModelRepository{b},
		Reviews:    &ReviewRepository{b},
		Carts:      &CartRepository{b},
		Orders:     &OrderRepository{b},
		Stats:      &StatsRepository{b},
		server:     s,
	}
}

// WithinTx runs fn in a database transaction. Repository calls made with
// the context passed to fn join the transaction; any returned error rolls
// it back. Nested calls reuse the outer transaction.
func (r *Repositories) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}
	return r.server.DB.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
