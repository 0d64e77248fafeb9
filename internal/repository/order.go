package repository

import (
	"context"
	"time"

	"github.com/kelvin262292/storefront/internal/model"
	"gorm.io/gorm"
)

type OrderRepository struct {
	base
}

// Create inserts the order with its items.
func (r *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db(ctx).Omit("User").Create(order).Error
}

func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	var order model.Order
	err := r.db(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("number = ?", number).
		First(&order).Error
	if err != nil {
		return nil, notFound(err, "order")
	}
	return &order, nil
}

// List pages through orders, newest first. userID scopes the listing to
// one customer when non-nil.
func (r *OrderRepository) List(ctx context.Context, userID *uint, q *model.ListOrdersQuery) (*model.PaginatedResponse[model.Order], error) {
	query := r.db(ctx).Model(&model.Order{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	p, l := q.Resolve()
	var orders []model.Order
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC, id DESC").
		Scopes(paginate(p, l)).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return toPage(orders, q.PageQuery, total), nil
}

// TransitionStatus moves the order from its current status to next and
// stamps the matching timestamp. The update is conditional on the status
// read by the caller, so a concurrent change makes it report false.
func (r *OrderRepository) TransitionStatus(ctx context.Context, order *model.Order, next model.OrderStatus, at time.Time) (bool, error) {
	updates := map[string]any{"status": next, "updated_at": at}
	switch next {
	case model.OrderStatusPaid:
		updates["paid_at"] = at
	case model.OrderStatusShipped:
		updates["shipped_at"] = at
	case model.OrderStatusDelivered:
		updates["delivered_at"] = at
	case model.OrderStatusCancelled:
		updates["cancelled_at"] = at
	}

	res := r.db(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Updates(updates)
	if res.Error != nil || res.RowsAffected == 0 {
		return false, res.Error
	}

	order.Status = next
	order.UpdatedAt = at
	switch next {
	case model.OrderStatusPaid:
		order.PaidAt = &at
	case model.OrderStatusShipped:
		order.ShippedAt = &at
	case model.OrderStatusDelivered:
		order.DeliveredAt = &at
	case model.OrderStatusCancelled:
		order.CancelledAt = &at
	}
	return true, nil
}
