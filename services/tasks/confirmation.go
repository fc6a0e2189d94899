package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"sparkathon/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeDeliveryConfirmation = "delivery:confirmation"

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ConfirmationPayloadFor builds the push shown to the user after scheduling.
func ConfirmationPayloadFor(c models.ScheduleConfirmation) models.ConfirmationPayload {
	window := fmt.Sprintf("%s %s", c.Slot.Date, c.Slot.Time)
	return models.ConfirmationPayload{
		UserID:         c.OwnerID,
		ConfirmationID: c.ConfirmationID,
		SlotID:         c.Slot.ID,
		Window:         window,
		Title:          "Delivery scheduled",
		Body:           fmt.Sprintf("Your delivery is booked for %s.", window),
	}
}

func NewConfirmationTask(payload models.ConfirmationPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeDeliveryConfirmation, b)
	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.TaskID("confirmation:" + payload.ConfirmationID),
	}
	return task, opts, nil
}

// ConfirmationDispatcher queues confirmation pushes for successful submissions.
type ConfirmationDispatcher struct {
	queue  Enqueuer
	logger *zap.Logger
}

func NewConfirmationDispatcher(queue Enqueuer, logger *zap.Logger) *ConfirmationDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfirmationDispatcher{queue: queue, logger: logger}
}

// Dispatch enqueues the confirmation. Anonymous confirmations are skipped;
// failures are logged and never reach the user.
func (d *ConfirmationDispatcher) Dispatch(ctx context.Context, c models.ScheduleConfirmation) {
	if c.OwnerID == "" {
		return
	}
	task, opts, err := NewConfirmationTask(ConfirmationPayloadFor(c))
	if err != nil {
		d.logger.Error("failed to build confirmation task", zap.Error(err))
		return
	}
	info, err := d.queue.EnqueueContext(ctx, task, opts...)
	if err != nil {
		d.logger.Warn("failed to enqueue confirmation",
			zap.String("confirmation", c.ConfirmationID),
			zap.Error(err),
		)
		return
	}
	d.logger.Debug("confirmation enqueued", zap.String("task", info.ID), zap.String("queue", info.Queue))
}
