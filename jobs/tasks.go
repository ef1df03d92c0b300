package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/sakura-salon/sakura/internal/mail"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail delivers one notification e-mail.
	TaskTypeSendEmail = "mail:send"
	// TaskReviewsWarmup refreshes the public reviews cache.
	TaskReviewsWarmup = "reviews:warmup"
	// TaskIdempotencyCleanup prunes old booking submission keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(msg mail.Message) (*asynq.Task, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode mail task: %w", err)
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.MaxRetry(5)), nil
}

// NewReviewsWarmupTask constructs the cache warmup task.
func NewReviewsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskReviewsWarmup, nil, asynq.MaxRetry(3))
}

// CleanupPayload configures an idempotency cleanup run.
type CleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewIdempotencyCleanupTask constructs the cleanup task.
func NewIdempotencyCleanupTask(retentionHours int) (*asynq.Task, error) {
	data, err := json.Marshal(CleanupPayload{RetentionHours: retentionHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data, asynq.MaxRetry(1)), nil
}
