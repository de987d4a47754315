// Package inventory tracks the remaining bookable capacity of each service.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/KowsickReddy/TravelGo/database/repository"

	"go.uber.org/zap"
)

var (
	ErrInsufficientAvailability = errors.New("insufficient availability")
	ErrServiceNotFound          = errors.New("service not found")
	ErrInvalidUnits             = errors.New("units must be positive")
)

// Ledger reserves and releases capacity. Calls made with a transactional
// context take part in the caller's transaction.
type Ledger interface {
	// Reserve atomically decrements availability by n, failing with
	// ErrInsufficientAvailability when fewer than n units remain.
	Reserve(ctx context.Context, serviceID string, n int) error
	// Release atomically increments availability by n.
	Release(ctx context.Context, serviceID string, n int) error
	Available(ctx context.Context, serviceID string) (int, error)
}

// DefaultLedger implements Ledger on top of the service repository's
// single-row availability primitives.
type DefaultLedger struct {
	repo   repository.ServiceRepository
	logger *zap.Logger
}

func NewLedger(repo repository.ServiceRepository, logger *zap.Logger) *DefaultLedger {
	return &DefaultLedger{repo: repo, logger: logger}
}

func (l *DefaultLedger) Reserve(ctx context.Context, serviceID string, n int) error {
	if n <= 0 {
		return ErrInvalidUnits
	}
	ok, err := l.repo.DecrementAvailability(ctx, serviceID, n)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("reserve %d units on %s: %w", n, serviceID, ErrServiceNotFound)
		}
		return fmt.Errorf("reserve %d units on %s: %w", n, serviceID, err)
	}
	if !ok {
		l.logger.Info("inventory: reservation rejected",
			zap.String("serviceID", serviceID), zap.Int("units", n))
		return fmt.Errorf("reserve %d units on %s: %w", n, serviceID, ErrInsufficientAvailability)
	}
	l.logger.Debug("inventory: reserved", zap.String("serviceID", serviceID), zap.Int("units", n))
	return nil
}

func (l *DefaultLedger) Release(ctx context.Context, serviceID string, n int) error {
	if n <= 0 {
		return ErrInvalidUnits
	}
	if err := l.repo.IncrementAvailability(ctx, serviceID, n); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("release %d units on %s: %w", n, serviceID, ErrServiceNotFound)
		}
		return fmt.Errorf("release %d units on %s: %w", n, serviceID, err)
	}
	l.logger.Debug("inventory: released", zap.String("serviceID", serviceID), zap.Int("units", n))
	return nil
}

func (l *DefaultLedger) Available(ctx context.Context, serviceID string) (int, error) {
	svc, err := l.repo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrServiceNotFound
		}
		return 0, err
	}
	return svc.Availability, nil
}
