package repository

import (
	"context"

	"github.com/kelvin262292/storefront/internal/model"
	"github.com/shopspring/decimal"
)

// StatsRepository runs the aggregate queries behind the admin dashboard.
type StatsRepository struct {
	base
}

func (r *StatsRepository) CountProducts(ctx context.Context) (all, active int64, err error) {
	if err = r.db(ctx).Model(&model.Product{}).Count(&all).Error; err != nil {
		return 0, 0, err
	}
	err = r.db(ctx).Model(&model.Product{}).Where("is_active = ?", true).Count(&active).Error
	return all, active, err
}

// LowStock lists active products with at most threshold units left,
// scarcest first.
func (r *StatsRepository) LowStock(ctx context.Context, threshold, limit int) ([]model.LowStockProduct, error) {
	rows := []model.LowStockProduct{}
	err := r.db(ctx).
		Model(&model.Product{}).
		Select("id, name, slug, sku, stock").
		Where("is_active = ? AND stock <= ?", true, threshold).
		Order("stock ASC, id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// OrdersByStatus counts orders per status; every status is present.
func (r *StatsRepository) OrdersByStatus(ctx context.Context) (map[model.OrderStatus]int64, error) {
	var rows []struct {
		Status model.OrderStatus
		Count  int64
	}
	err := r.db(ctx).
		Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.OrderStatus]int64, len(model.OrderStatuses))
	for _, s := range model.OrderStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Revenue sums order totals that count as revenue.
func (r *StatsRepository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var revenue decimal.NullDecimal
	statuses := []model.OrderStatus{}
	for _, s := range model.OrderStatuses {
		if s.CountsAsRevenue() {
			statuses = append(statuses, s)
		}
	}

	err := r.db(ctx).
		Model(&model.Order{}).
		Select("COALESCE(SUM(total), 0)").
		Where("status IN ?", statuses).
		Scan(&revenue).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !revenue.Valid {
		return decimal.Zero, nil
	}
	return model.RoundMoney(revenue.Decimal), nil
}

func (r *StatsRepository) CountReviews(ctx context.Context) (int64, error) {
	var n int64
	err := r.db(ctx).Model(&model.Review{}).Count(&n).Error
	return n, err
}

func (r *StatsRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}
