package postgresRepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type txKey struct{}

// Store wraps the gorm handle shared by the repositories. A transaction is
// carried in the context so repository calls made inside WithinTransaction
// use it.
type Store struct {
	gdb *gorm.DB
}

// NewStore migrates the schema and builds the relational repositories.
func NewStore(gdb *gorm.DB) (*repository.Store, error) {
	if err := gdb.AutoMigrate(&models.Service{}, &models.Booking{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	s := &Store{gdb: gdb}

	return &repository.Store{
		Services: &ServiceRepo{s},
		Bookings: &BookingRepo{s},
		Tx:       s,
		Ping: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		Close: func(context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}, nil
}

func (s *Store) db(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return s.gdb.WithContext(ctx)
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// lockRow loads the row with SELECT ... FOR UPDATE so the caller's
// transaction owns it until commit.
func lockRow(tx *gorm.DB, dest interface{}, id string) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}
