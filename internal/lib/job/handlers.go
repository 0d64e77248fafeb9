package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Handle registers fn for a task type. It must be called before Start.
func (j *JobService) Handle(taskType string, fn func(ctx context.Context, t *asynq.Task) error) {
	j.mux.HandleFunc(taskType, fn)
}

// logTask wraps every handler with start/finish logging.
func (j *JobService) logTask(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		start := time.Now()
		taskID, _ := asynq.GetTaskID(ctx)
		retry, _ := asynq.GetRetryCount(ctx)

		logger := j.logger.With().
			Str("task", t.Type()).
			Str("task_id", taskID).
			Int("retry", retry).
			Logger()

		logger.Info().Msg("Processing task")

		if err := next.ProcessTask(ctx, t); err != nil {
			// Returning the error lets asynq schedule a retry.
			logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Task failed")
			return err
		}

		logger.Info().Dur("duration", time.Since(start)).Msg("Task completed")
		return nil
	})
}

// DecodePayload unmarshals a task's JSON payload. Malformed payloads are
// never going to succeed, so they skip retries.
func DecodePayload[T any](t *asynq.Task) (T, error) {
	var p T
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return p, nil
}
