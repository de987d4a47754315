package mongoRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookingRepo implements repository.BookingRepository using MongoDB.
// Transitions are single-document FindOneAndUpdate calls whose filter
// encodes the state the transition starts from.
type BookingRepo struct {
	coll *mongo.Collection
}

func (r *BookingRepo) Create(ctx context.Context, b *models.Booking) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *BookingRepo) GetByPaymentID(ctx context.Context, paymentID string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"payment_id": paymentID})
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *BookingRepo) ListStalePayments(ctx context.Context, before time.Time) ([]models.Booking, error) {
	return r.find(ctx, bson.M{
		"status":               models.BookingStatusPending,
		"payment_status":       models.PaymentStatusPending,
		"payment_id":           bson.M{"$exists": true, "$ne": nil},
		"payment_initiated_at": bson.M{"$lt": before},
	})
}

func (r *BookingRepo) SetPaymentOrder(ctx context.Context, id, paymentID, method string, at time.Time) (*models.Booking, error) {
	filter := bson.M{
		"id":             id,
		"status":         models.BookingStatusPending,
		"payment_status": bson.M{"$ne": models.PaymentStatusCompleted},
	}
	set := bson.M{
		"payment_id":           paymentID,
		"payment_method":       method,
		"payment_status":       models.PaymentStatusPending,
		"payment_initiated_at": at,
	}
	return r.transition(ctx, id, filter, set, options.After)
}

func (r *BookingRepo) MarkConfirmed(ctx context.Context, id, paymentID, transactionID string) (*models.Booking, error) {
	filter := bson.M{
		"id":             id,
		"status":         models.BookingStatusPending,
		"payment_status": bson.M{"$ne": models.PaymentStatusCompleted},
		"payment_id":     paymentID,
	}
	set := bson.M{
		"status":         models.BookingStatusConfirmed,
		"payment_status": models.PaymentStatusCompleted,
		"transaction_id": transactionID,
	}
	return r.transition(ctx, id, filter, set, options.After)
}

func (r *BookingRepo) MarkPaymentFailed(ctx context.Context, id, paymentID string) error {
	filter := bson.M{
		"id":             id,
		"status":         models.BookingStatusPending,
		"payment_status": bson.M{"$ne": models.PaymentStatusCompleted},
		"payment_id":     paymentID,
	}
	_, err := r.transition(ctx, id, filter, bson.M{"payment_status": models.PaymentStatusFailed}, options.After)
	return err
}

func (r *BookingRepo) MarkCancelled(ctx context.Context, id string) (*models.Booking, error) {
	filter := bson.M{
		"id":     id,
		"status": bson.M{"$ne": models.BookingStatusCancelled},
	}
	return r.transition(ctx, id, filter, bson.M{"status": models.BookingStatusCancelled}, options.Before)
}

func (r *BookingRepo) SetRefund(ctx context.Context, id, refundID string) error {
	_, err := r.transition(ctx, id, bson.M{"id": id}, bson.M{"refund_id": refundID}, options.After)
	return err
}

func (r *BookingRepo) transition(
	ctx context.Context,
	id string,
	filter, set bson.M,
	returnDoc options.ReturnDocument,
) (*models.Booking, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	set["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(returnDoc)

	var b models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&b)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update booking %s: %w", id, err)
	}

	count, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to look up booking %s: %w", id, err)
	}
	if count == 0 {
		return nil, repository.ErrNotFound
	}
	return nil, repository.ErrConflict
}

func (r *BookingRepo) findOne(ctx context.Context, filter bson.M) (*models.Booking, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	var b models.Booking
	if err := r.coll.FindOne(ctx, filter).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking: %w", err)
	}
	return &b, nil
}

func (r *BookingRepo) find(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]models.Booking, 0)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
