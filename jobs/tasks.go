package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/atelier-erp/atelier-erp/internal/orders"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOrdersExpireSweep persists expiry for stale pending orders.
	TaskOrdersExpireSweep = "orders:expire_sweep"
)

// ExpireSweepPayload is currently empty; the sweep reads its cutoff from the
// order service configuration.
type ExpireSweepPayload struct{}

// NewExpireSweepTask constructs an Asynq task.
func NewExpireSweepTask() (*asynq.Task, error) {
	data, err := json.Marshal(ExpireSweepPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrdersExpireSweep, data), nil
}

// NewExpireSweepHandler processes TaskOrdersExpireSweep tasks.
func NewExpireSweepHandler(service *orders.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ExpireSweepPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		expired, err := service.ExpireStale(ctx)
		if err != nil {
			return err
		}
		if expired > 0 {
			logger.Info("expired stale pending orders", slog.Int64("count", expired))
		}
		return nil
	}
}
