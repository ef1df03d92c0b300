package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sakura-salon/sakura/internal/mail"
)

// Client puts salon tasks on the queue; the web process uses it.
type Client struct {
	client *asynq.Client
}

// NewClient constructs a Client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

var _ mail.Enqueuer = (*Client)(nil)

// EnqueueMail queues a rendered e-mail for delivery by the worker.
func (c *Client) EnqueueMail(ctx context.Context, msg mail.Message) error {
	task, err := NewSendEmailTask(msg)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// EnqueueReviewsWarmup asks for a reviews cache refresh now. Requests made
// within the same minute collapse into one task.
func (c *Client) EnqueueReviewsWarmup(ctx context.Context) error {
	_, err := c.client.EnqueueContext(ctx, NewReviewsWarmupTask(),
		asynq.Queue(QueueDefault),
		asynq.Unique(time.Minute),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// Close releases the Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}
