package jobs

import (
	"context"
	"fmt"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/backoffice_ledger/internal/core/ports/services"
	"github.com/hibiken/asynq"
)

// Client submits compensation tasks to the queue.
type Client struct {
	client   *asynq.Client
	maxRetry int
}

// NewClient constructs an Asynq client. Exhausted tasks are archived by Asynq after maxRetry attempts.
func NewClient(redisOpts asynq.RedisClientOpt, maxRetry int) *Client {
	if maxRetry <= 0 {
		maxRetry = 10
	}
	return &Client{client: asynq.NewClient(redisOpts), maxRetry: maxRetry}
}

var _ portssvc.CompensationEnqueuer = (*Client)(nil)

// EnqueueCompensation enqueues a failed best-effort ledger effect for retry.
func (c *Client) EnqueueCompensation(ctx context.Context, compensation domain.Compensation) error {
	task, err := NewCompensationTask(compensation)
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueLedger), asynq.MaxRetry(c.maxRetry)); err != nil {
		return fmt.Errorf("jobs: enqueue %s: %w", task.Type(), err)
	}
	return nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
