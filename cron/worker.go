package cron

import (
	"context"
	"time"

	"github.com/KowsickReddy/TravelGo/config"
	"github.com/KowsickReddy/TravelGo/services/notification"
	"github.com/KowsickReddy/TravelGo/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt returns the asynq connection settings for the task queue DB.
func QueueRedisOpt(cfg config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
}

// InitNotificationWorker runs the asynq server that delivers queued booking
// confirmations through sender. The returned server must be shut down by
// the caller.
func InitNotificationWorker(ctx context.Context, cfg config.Config, sender notification.Sender, logger *zap.Logger) *asynq.Server {
	queue := cfg.NotifyTaskQueue
	if queue == "" {
		queue = "default"
	}
	workers := cfg.NotifyWorkers
	if workers <= 0 {
		workers = 1
	}

	srv := asynq.NewServer(
		QueueRedisOpt(cfg),
		asynq.Config{
			Concurrency: workers,
			Queues: map[string]int{
				queue: 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingConfirmation, handleConfirmationTask(sender, logger))

	go monitorRedisConnection(ctx, cfg, logger)

	go func() {
		logger.Info("Starting notification worker", zap.String("queue", queue))
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("Notification worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Notification worker gave up; confirmations stay queued in Redis")
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempts*2) * time.Second):
			}
		}
	}()
	return srv
}

func handleConfirmationTask(sender notification.Sender, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		notice, err := tasks.ParseConfirmationTask(task)
		if err != nil {
			logger.Error("Dropping malformed confirmation task", zap.Error(err))
			return asynq.SkipRetry
		}
		if err := sender.Send(ctx, notice); err != nil {
			logger.Warn("Confirmation delivery failed, will retry",
				zap.String("bookingID", notice.Booking.ID), zap.Error(err))
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings the queue Redis periodically to surface outages.
func monitorRedisConnection(ctx context.Context, cfg config.Config, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("Notification queue Redis unreachable", zap.Error(err))
			}
		}
	}
}
