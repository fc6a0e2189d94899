package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sparkathon/models"
	"sparkathon/services/notification"
	"sparkathon/services/tasks"
	"sparkathon/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitConfirmationWorker starts the confirmation worker in the background
// and returns its server so the caller can shut it down.
func InitConfirmationWorker(redisOpt asynq.RedisClientOpt, notifSvc notification.NotificationService) *asynq.Server {
	logger := utils.GetLogger()

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger:   logger.Sugar(),
			LogLevel: asynq.WarnLevel,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeDeliveryConfirmation, handleConfirmationTask(notifSvc, logger))

	go func() {
		logger.Info("starting confirmation worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("confirmation worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err),
			)
			if attempts == maxAttempts {
				logger.Error("confirmation worker giving up; confirmations will stay queued")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()

	return srv
}

func handleConfirmationTask(notifSvc notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ConfirmationPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Warn("invalid confirmation payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if p.UserID == "" {
			logger.Warn("confirmation without user, dropping", zap.String("confirmation", p.ConfirmationID))
			return nil
		}

		data := map[string]string{
			"confirmationId": p.ConfirmationID,
			"slotId":         p.SlotID,
			"window":         p.Window,
		}
		if err := notifSvc.SendUserPushNotification(ctx, p.UserID, p.Title, p.Body, data); err != nil {
			logger.Warn("failed to send confirmation push", zap.String("user", p.UserID), zap.Error(err))
			return err
		}
		logger.Debug("confirmation push sent", zap.String("user", p.UserID), zap.String("confirmation", p.ConfirmationID))
		return nil
	}
}
