package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names stored in Redis; the worker mux routes on them.
const (
	TaskOrderConfirmation = "email:order_confirmation"
	TaskOrderShipped      = "email:order_shipped"
	TaskRecomputeRating   = "review:recompute_rating"
	TaskCartCleanup       = "cart:cleanup"
)

// OrderEmailPayload identifies the order an email is about. The handler
// reloads the order so the email reflects committed data.
type OrderEmailPayload struct {
	OrderNumber string `json:"order_number"`
}

type RecomputeRatingPayload struct {
	ProductID uint `json:"product_id"`
}

type CartCleanupPayload struct {
	IdleFor time.Duration `json:"idle_for"`
}

func newTask(typ string, payload any, opts ...asynq.Option) (*asynq.Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(typ, raw, opts...), nil
}

// NewOrderConfirmationTask goes to the critical queue: customers expect
// the confirmation within seconds of paying.
func NewOrderConfirmationTask(orderNumber string) (*asynq.Task, error) {
	return newTask(
		TaskOrderConfirmation,
		OrderEmailPayload{OrderNumber: orderNumber},
		asynq.MaxRetry(5),
		asynq.Queue(QueueCritical),
		asynq.Timeout(30*time.Second),
	)
}

func NewOrderShippedTask(orderNumber string) (*asynq.Task, error) {
	return newTask(
		TaskOrderShipped,
		OrderEmailPayload{OrderNumber: orderNumber},
		asynq.MaxRetry(5),
		asynq.Queue(QueueDefault),
		asynq.Timeout(30*time.Second),
	)
}

func NewRecomputeRatingTask(productID uint) (*asynq.Task, error) {
	return newTask(
		TaskRecomputeRating,
		RecomputeRatingPayload{ProductID: productID},
		asynq.MaxRetry(3),
		asynq.Queue(QueueDefault),
		asynq.Timeout(time.Minute),
	)
}

func NewCartCleanupTask(idleFor time.Duration) (*asynq.Task, error) {
	return newTask(
		TaskCartCleanup,
		CartCleanupPayload{IdleFor: idleFor},
		asynq.MaxRetry(1),
		asynq.Queue(QueueLow),
		asynq.Timeout(5*time.Minute),
	)
}
