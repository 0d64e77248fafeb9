package service

import (
	"context"

	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/repository"
	"github.com/kelvin262292/storefront/internal/server"
)

const lowStockRows = 20

type AdminService struct {
	server *server.Server
	repos  *repository.Repositories
}

func NewAdminService(s *server.Server, repos *repository.Repositories) *AdminService {
	return &AdminService{server: s, repos: repos}
}

// Stats assembles the dashboard overview.
func (a *AdminService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	threshold := a.server.Config.Storefront.LowStockThreshold
	stats := &model.DashboardStats{
		LowStockLimit: threshold,
		Currency:      a.server.Config.Storefront.Currency,
	}

	var err error
	if stats.Products, stats.ActiveProducts, err = a.repos.Stats.CountProducts(ctx); err != nil {
		return nil, err
	}
	if stats.LowStock, err = a.repos.Stats.LowStock(ctx, threshold, lowStockRows); err != nil {
		return nil, err
	}
	if stats.OrdersByStatus, err = a.repos.Stats.OrdersByStatus(ctx); err != nil {
		return nil, err
	}
	if stats.Revenue, err = a.repos.Stats.Revenue(ctx); err != nil {
		return nil, err
	}
	if stats.Reviews, err = a.repos.Stats.CountReviews(ctx); err != nil {
		return nil, err
	}
	if stats.Users, err = a.repos.Stats.CountUsers(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}
