package mongoRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KowsickReddy/TravelGo/database/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	servicesCollection = "services"
	bookingsCollection = "bookings"
	opTimeout          = 5 * time.Second

	maxTransactionAttempts = 5
	retryBackoff           = 10 * time.Millisecond

	transientTransactionError   = "TransientTransactionError"
	unknownTransactionCommitErr = "UnknownTransactionCommitResult"
)

// Store holds the MongoDB handles shared by the repositories.
type Store struct {
	client   *mongo.Client
	services *mongo.Collection
	bookings *mongo.Collection
}

// NewStore builds the Mongo-backed repositories on an already connected client.
// Transactions require the server to run as a replica set.
func NewStore(client *mongo.Client, dbName string, logger *zap.Logger) *repository.Store {
	db := client.Database(dbName)
	s := &Store{
		client:   client,
		services: db.Collection(servicesCollection),
		bookings: db.Collection(bookingsCollection),
	}
	if err := s.ensureIndexes(); err != nil {
		logger.Warn("mongo: failed to create indexes", zap.Error(err))
	}

	return &repository.Store{
		Services: &ServiceRepo{coll: s.services},
		Bookings: &BookingRepo{coll: s.bookings},
		Tx:       s,
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		Close: client.Disconnect,
	}
}

// newContext derives a bounded context for a single operation. Session
// information carried by parent is preserved.
func newContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, opTimeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (s *Store) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	serviceIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "city", Value: 1}}},
		{Keys: bson.D{{Key: "rating", Value: -1}}},
	}
	if _, err := s.services.Indexes().CreateMany(ctx, serviceIndexes); err != nil {
		return fmt.Errorf("failed to create service indexes: %w", err)
	}

	bookingIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "payment_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "payment_status", Value: 1}, {Key: "payment_initiated_at", Value: 1}}},
	}
	if _, err := s.bookings.Indexes().CreateMany(ctx, bookingIndexes); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

// WithinTransaction runs fn in a multi-document transaction. The session
// context handed to fn makes every repository call part of the transaction.
// A context that already carries a session joins it. Transactions aborted by
// a write conflict are run again from the start, so fn must not keep state
// across attempts.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}
	return RetryTransient(ctx, func(ctx context.Context) error {
		return s.runTransaction(ctx, fn)
	})
}

func (s *Store) runTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		for attempt := 1; ; attempt++ {
			err := sc.CommitTransaction(sc)
			if err == nil || attempt >= maxTransactionAttempts || !HasErrorLabel(err, unknownTransactionCommitErr) {
				return err
			}
		}
	})
}

// RetryTransient calls attempt until it returns an error that is not
// labelled TransientTransactionError, or maxTransactionAttempts is reached.
func RetryTransient(ctx context.Context, attempt func(ctx context.Context) error) error {
	var err error
	for i := 1; i <= maxTransactionAttempts; i++ {
		err = attempt(ctx)
		if err == nil || !HasErrorLabel(err, transientTransactionError) {
			return err
		}
		if i == maxTransactionAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(i) * retryBackoff):
		}
	}
	return fmt.Errorf("transaction aborted after %d attempts: %w", maxTransactionAttempts, err)
}

// HasErrorLabel reports whether any error in err's chain carries the server
// error label.
func HasErrorLabel(err error, label string) bool {
	var labeled mongo.LabeledError
	return errors.As(err, &labeled) && labeled.HasErrorLabel(label)
}
