package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskConstructors(t *testing.T) {
	task, err := NewOrderConfirmationTask("SF-20261018-ABCDEF12")
	require.NoError(t, err)
	assert.Equal(t, TaskOrderConfirmation, task.Type())

	p, err := DecodePayload[OrderEmailPayload](task)
	require.NoError(t, err)
	assert.Equal(t, "SF-20261018-ABCDEF12", p.OrderNumber)

	task, err = NewRecomputeRatingTask(9)
	require.NoError(t, err)
	rp, err := DecodePayload[RecomputeRatingPayload](task)
	require.NoError(t, err)
	assert.Equal(t, uint(9), rp.ProductID)

	task, err = NewCartCleanupTask(48 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, TaskCartCleanup, task.Type())
	cp, err := DecodePayload[CartCleanupPayload](task)
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, cp.IdleFor)
}

func TestDecodePayload_MalformedSkipsRetry(t *testing.T) {
	_, err := DecodePayload[OrderEmailPayload](asynq.NewTask(TaskOrderShipped, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestEnqueue_NilServiceIsNoop(t *testing.T) {
	var j *JobService
	task, err := NewOrderShippedTask("SF-1")
	require.NoError(t, err)
	assert.NoError(t, j.Enqueue(context.Background(), task))
}

func TestLogTask_PassesThroughResult(t *testing.T) {
	logger := zerolog.Nop()
	j := &JobService{mux: asynq.NewServeMux(), logger: &logger}

	boom := errors.New("boom")
	var seen string
	handler := j.logTask(asynq.HandlerFunc(func(_ context.Context, task *asynq.Task) error {
		seen = task.Type()
		return boom
	}))

	err := handler.ProcessTask(context.Background(), asynq.NewTask(TaskCartCleanup, nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, TaskCartCleanup, seen)
}

func TestHandle_RoutesByType(t *testing.T) {
	logger := zerolog.Nop()
	j := &JobService{mux: asynq.NewServeMux(), logger: &logger}
	j.mux.Use(j.logTask)

	called := false
	j.Handle(TaskRecomputeRating, func(_ context.Context, _ *asynq.Task) error {
		called = true
		return nil
	})

	require.NoError(t, j.mux.ProcessTask(context.Background(), asynq.NewTask(TaskRecomputeRating, []byte(`{"product_id":1}`))))
	assert.True(t, called)

	assert.Error(t, j.mux.ProcessTask(context.Background(), asynq.NewTask("unknown", nil)))
}
