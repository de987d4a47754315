package notification

import (
	"context"
	"sync"
	"time"

	"github.com/KowsickReddy/TravelGo/models"

	"go.uber.org/zap"
)

const defaultSendTimeout = 30 * time.Second

// Queue is a bounded in-process worker pool in front of a Sender. When the
// buffer is full new notices are dropped.
type Queue struct {
	notices     chan models.ConfirmationNotice
	sender      Sender
	logger      *zap.Logger
	sendTimeout time.Duration

	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewQueue starts workers goroutines draining a buffer of size notices.
func NewQueue(sender Sender, size, workers int, logger *zap.Logger) *Queue {
	if size <= 0 {
		size = 100
	}
	if workers <= 0 {
		workers = 1
	}
	q := &Queue{
		notices:     make(chan models.ConfirmationNotice, size),
		sender:      sender,
		logger:      logger,
		sendTimeout: defaultSendTimeout,
	}
	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go q.worker()
	}
	return q
}

// Dispatch enqueues the notice or drops it if the queue is full or closed.
func (q *Queue) Dispatch(notice models.ConfirmationNotice) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("notification queue closed, dropping notice", zap.String("bookingID", notice.Booking.ID))
		return
	}
	select {
	case q.notices <- notice:
	default:
		q.logger.Warn("notification queue full, dropping notice",
			zap.String("bookingID", notice.Booking.ID), zap.Int("capacity", cap(q.notices)))
	}
}

// Close stops accepting notices and waits for queued ones to be delivered
// or for ctx to expire.
func (q *Queue) Close(ctx context.Context) error {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.notices)
		q.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for notice := range q.notices {
		q.deliver(notice)
	}
}

func (q *Queue) deliver(notice models.ConfirmationNotice) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("notification sender panicked", zap.Any("panic", r),
				zap.String("bookingID", notice.Booking.ID))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), q.sendTimeout)
	defer cancel()

	if err := q.sender.Send(ctx, notice); err != nil {
		q.logger.Error("failed to deliver booking confirmation",
			zap.String("bookingID", notice.Booking.ID),
			zap.String("recipient", notice.Recipient),
			zap.Error(err))
		return
	}
	q.logger.Info("booking confirmation delivered",
		zap.String("bookingID", notice.Booking.ID), zap.String("recipient", notice.Recipient))
}
