package service

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/kelvin262292/storefront/internal/lib/job"
	"github.com/kelvin262292/storefront/internal/model"
)

// Mailer sends the transactional order emails.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, o *model.Order) error
	SendOrderShipped(ctx context.Context, o *model.Order) error
}

// taskRouter is the registration half of job.JobService.
type taskRouter interface {
	Handle(taskType string, fn func(ctx context.Context, t *asynq.Task) error)
}

// RegisterJobHandlers wires every background task type to the service
// that processes it. Call before starting the job server.
func (s *Services) RegisterJobHandlers(r taskRouter) {
	r.Handle(job.TaskOrderConfirmation, s.handleOrderEmail(s.Mailer.SendOrderConfirmation))
	r.Handle(job.TaskOrderShipped, s.handleOrderEmail(s.Mailer.SendOrderShipped))
	r.Handle(job.TaskRecomputeRating, s.handleRecomputeRating)
	r.Handle(job.TaskCartCleanup, s.handleCartCleanup)
}

func (s *Services) handleOrderEmail(send func(context.Context, *model.Order) error) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		p, err := job.DecodePayload[job.OrderEmailPayload](t)
		if err != nil {
			return err
		}

		order, err := s.repos.Orders.GetByNumber(ctx, p.OrderNumber)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("order %s: %w", p.OrderNumber, asynq.SkipRetry)
			}
			return err
		}

		return send(ctx, order)
	}
}

func (s *Services) handleRecomputeRating(ctx context.Context, t *asynq.Task) error {
	p, err := job.DecodePayload[job.RecomputeRatingPayload](t)
	if err != nil {
		return err
	}
	return s.Products.RecomputeRating(ctx, p.ProductID)
}

func (s *Services) handleCartCleanup(ctx context.Context, t *asynq.Task) error {
	p, err := job.DecodePayload[job.CartCleanupPayload](t)
	if err != nil {
		return err
	}
	_, err = s.Carts.CleanupIdle(ctx, p.IdleFor)
	return err
}
