// Package worker implements background task handlers for async rate refreshes.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"fxresolver/internal/service"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NewRefreshHandler returns a function to handle rate refresh tasks.
func NewRefreshHandler(svc service.RateServiceInterface, logger *zap.SugaredLogger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload service.RefreshTaskPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Errorw("Invalid task payload", "type", t.Type(), "error", err)
			return nil
		}

		// A window that does not parse cannot succeed on retry either.
		start, err := time.Parse("2006-01-02", payload.Start)
		if err != nil {
			logger.Errorw("Invalid task window start", "refresh_id", payload.RefreshID, "start", payload.Start, "error", err)
			return nil
		}
		end, err := time.Parse("2006-01-02", payload.End)
		if err != nil {
			logger.Errorw("Invalid task window end", "refresh_id", payload.RefreshID, "end", payload.End, "error", err)
			return nil
		}

		if err := svc.ProcessRefresh(ctx, payload.RefreshID, payload.Source, start, end); err != nil {
			logger.Errorw("Task processing failed", "refresh_id", payload.RefreshID, "error", err)
			return err
		}

		logger.Infow("Task completed", "refresh_id", payload.RefreshID)
		return nil
	}
}

// AsynqEnqueuer is responsible for enqueuing tasks to an Asynq queue with specific configurations for retries and timeouts.
type AsynqEnqueuer struct {
	client   *asynq.Client
	maxRetry int
	timeout  time.Duration
}

// NewAsynqEnqueuer creates a new AsynqEnqueuer with the given client, retry limit, and task timeout duration.
func NewAsynqEnqueuer(client *asynq.Client, maxRetry int, timeout time.Duration) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		client:   client,
		maxRetry: maxRetry,
		timeout:  timeout,
	}
}

// EnqueueRefreshTask enqueues a rate refresh task with the specified payload and context using Asynq.
func (e *AsynqEnqueuer) EnqueueRefreshTask(ctx context.Context, payload service.RefreshTaskPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(service.TaskTypeRefreshRates, data,
		asynq.MaxRetry(e.maxRetry),
		asynq.Timeout(e.timeout),
	)

	_, err = e.client.EnqueueContext(ctx, task)
	return err
}

var _ service.RefreshEnqueuer = (*AsynqEnqueuer)(nil)
