package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PaymentExpirer fails payment orders left unverified for too long.
type PaymentExpirer interface {
	ExpireStalePayments(ctx context.Context, olderThan time.Duration) (int, error)
}

// StartStalePaymentSweeper runs the stale payment sweep on schedule (cron
// syntax or descriptors such as "@every 5m"). Stop the returned scheduler
// on shutdown.
func StartStalePaymentSweeper(ctx context.Context, schedule string, ttl time.Duration, expirer PaymentExpirer, logger *zap.Logger) (*cron.Cron, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("payment TTL must be positive, got %s", ttl)
	}
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
	if _, err := c.AddFunc(schedule, func() { sweep(ctx, ttl, expirer, logger) }); err != nil {
		return nil, fmt.Errorf("invalid STALE_PAYMENT_SWEEP %q: %w", schedule, err)
	}
	c.Start()
	logger.Info("Stale payment sweeper started", zap.String("schedule", schedule), zap.Duration("ttl", ttl))
	return c, nil
}

func sweep(ctx context.Context, ttl time.Duration, expirer PaymentExpirer, logger *zap.Logger) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := expirer.ExpireStalePayments(ctx, ttl)
	if err != nil {
		logger.Error("Stale payment sweep failed", zap.Int("expired", n), zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info("Stale payment sweep finished", zap.Int("expired", n))
	}
}
