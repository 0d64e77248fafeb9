// Package lib groups infrastructure that does not belong to a single layer:
// background jobs on asynq, transactional email through Resend, the
// Redis cache, local asset storage, the cron scheduler and small helpers.
package lib
