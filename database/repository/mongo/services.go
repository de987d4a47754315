package mongoRepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ServiceRepo implements repository.ServiceRepository using MongoDB.
type ServiceRepo struct {
	coll *mongo.Collection
}

func (r *ServiceRepo) Create(ctx context.Context, svc *models.Service) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	now := time.Now()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, svc); err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *ServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	var svc models.Service
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&svc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching service with id %s: %w", id, err)
	}
	return &svc, nil
}

func (r *ServiceRepo) Search(ctx context.Context, f models.ServiceSearch) ([]models.Service, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	filter := bson.M{"is_active": true}
	if f.Destination != "" {
		rx := containsRegex(f.Destination)
		filter["$or"] = bson.A{
			bson.M{"location": rx},
			bson.M{"city": rx},
			bson.M{"state": rx},
		}
	}
	if f.City != "" {
		filter["city"] = containsRegex(f.City)
	}
	if f.State != "" {
		filter["state"] = containsRegex(f.State)
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = f.MinPrice.Minor()
	}
	if f.MaxPrice != nil {
		price["$lte"] = f.MaxPrice.Minor()
	}
	if len(price) > 0 {
		filter["price_per_person"] = price
	}
	if f.MinRating > 0 {
		filter["rating"] = bson.M{"$gte": f.MinRating}
	}

	opts := options.Find().SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error searching services: %w", err)
	}
	defer cursor.Close(ctx)

	services := make([]models.Service, 0)
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("error decoding services: %w", err)
	}
	return services, nil
}

func (r *ServiceRepo) UpdatePrice(ctx context.Context, id string, price models.Amount) error {
	return r.set(ctx, id, bson.M{"price_per_person": price.Minor()})
}

func (r *ServiceRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.set(ctx, id, bson.M{"is_active": active})
}

// DecrementAvailability is a single-document compare-and-decrement: the
// filter only matches while availability >= n.
func (r *ServiceRepo) DecrementAvailability(ctx context.Context, id string, n int) (bool, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	filter := bson.M{"id": id, "availability": bson.M{"$gte": n}}
	update := bson.M{
		"$inc": bson.M{"availability": -n},
		"$set": bson.M{"updated_at": time.Now()},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to decrement availability for service %s: %w", id, err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}

	count, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return false, fmt.Errorf("failed to look up service %s: %w", id, err)
	}
	if count == 0 {
		return false, repository.ErrNotFound
	}
	return false, nil
}

func (r *ServiceRepo) IncrementAvailability(ctx context.Context, id string, n int) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"availability": n},
		"$set": bson.M{"updated_at": time.Now()},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to increment availability for service %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ServiceRepo) set(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	fields["updated_at"] = time.Now()
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update service with id %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func containsRegex(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}
