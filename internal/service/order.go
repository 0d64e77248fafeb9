package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kelvin262292/storefront/internal/errs"
	"github.com/kelvin262292/storefront/internal/lib/job"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/repository"
	"github.com/kelvin262292/storefront/internal/server"
)

type OrderService struct {
	server *server.Server
	repos  *repository.Repositories
	users    *UserService
	products *ProductService
	jobs     job.Enqueuer
	now      func() time.Time
}

func NewOrderService(s *server.Server, repos *repository.Repositories, users *UserService, products *ProductService, jobs job.Enqueuer) *OrderService {
	return &OrderService{server: s, repos: repos, users: users, products: products, jobs: jobs, now: time.Now}
}

// List returns the caller's orders, newest first.
func (o *OrderService) List(ctx context.Context, p model.Principal, q *model.ListOrdersQuery) (*model.PaginatedResponse[model.Order], error) {
	user, err := o.users.EnsureUser(ctx, p)
	if err != nil {
		return nil, err
	}
	return o.repos.Orders.List(ctx, &user.ID, q)
}

// ListAll is the admin listing across customers.
func (o *OrderService) ListAll(ctx context.Context, q *model.ListOrdersQuery) (*model.PaginatedResponse[model.Order], error) {
	return o.repos.Orders.List(ctx, nil, q)
}

// Get returns an order visible to p. Other customers' orders look like
// missing ones.
func (o *OrderService) Get(ctx context.Context, p model.Principal, number string) (*model.Order, error) {
	order, err := o.repos.Orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := o.authorize(ctx, p, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel lets a customer cancel their own order while it is pending.
func (o *OrderService) Cancel(ctx context.Context, p model.Principal, number string) (*model.Order, error) {
	var order *model.Order
	err := o.repos.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = o.repos.Orders.GetByNumber(ctx, number)
		if err != nil {
			return err
		}
		if err := o.authorize(ctx, p, order); err != nil {
			return err
		}
		if order.Status != model.OrderStatusPending {
			return errs.NewConflictError(
				fmt.Sprintf("Orders can only be cancelled while pending; this one is %s", order.Status),
				errs.Code("ORDER_NOT_CANCELLABLE"),
				nil,
			)
		}
		return o.transition(ctx, order, model.OrderStatusCancelled)
	})
	if err != nil {
		return nil, err
	}
	o.products.StockChanged(ctx, order.ProductIDs()...)
	return order, nil
}

// UpdateStatus is the admin status change. Only the lifecycle edges are
// allowed; cancelling returns stock and shipping notifies the customer.
func (o *OrderService) UpdateStatus(ctx context.Context, req *model.UpdateOrderStatusRequest) (*model.Order, error) {
	var order *model.Order
	err := o.repos.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = o.repos.Orders.GetByNumber(ctx, req.Number)
		if err != nil {
			return err
		}
		return o.transition(ctx, order, req.Status)
	})
	if err != nil {
		return nil, err
	}

	if order.Status == model.OrderStatusCancelled {
		o.products.StockChanged(ctx, order.ProductIDs()...)
	}
	if order.Status == model.OrderStatusShipped {
		task, err := job.NewOrderShippedTask(order.Number)
		if err == nil {
			err = o.jobs.Enqueue(ctx, task)
		}
		if err != nil {
			o.server.Logger.Error().Err(err).Str("order_number", order.Number).Msg("failed to enqueue shipping notification")
		}
	}

	return order, nil
}

// transition moves order to next, restocking on cancellation. It must run
// inside a transaction.
func (o *OrderService) transition(ctx context.Context, order *model.Order, next model.OrderStatus) error {
	from := order.Status
	if !from.CanTransitionTo(next) {
		return errs.NewConflictError(
			fmt.Sprintf("Cannot change order status from %s to %s", from, next),
			errs.Code("INVALID_STATUS_TRANSITION"),
			nil,
		)
	}

	ok, err := o.repos.Orders.TransitionStatus(ctx, order, next, o.now())
	if err != nil {
		return err
	}
	if !ok {
		return errs.NewConflictError("The order was changed by someone else, please reload", errs.Code("ORDER_STATUS_CHANGED"), nil)
	}

	if next == model.OrderStatusCancelled {
		for _, item := range order.Items {
			if item.ProductID == nil {
				continue
			}
			if err := o.repos.Products.IncrementStock(ctx, *item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
	}

	o.server.Logger.Info().
		Str("order_number", order.Number).
		Str("from", string(from)).
		Str("to", string(next)).
		Msg("order status changed")
	return nil
}

func (o *OrderService) authorize(ctx context.Context, p model.Principal, order *model.Order) error {
	if p.IsAdmin {
		return nil
	}
	user, err := o.users.EnsureUser(ctx, p)
	if err != nil {
		return err
	}
	if order.UserID != user.ID {
		return errs.NewNotFoundError("Order not found", true, errs.Code("ORDER_NOT_FOUND"))
	}
	return nil
}
