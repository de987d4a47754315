// Package memoryRepo is an in-process storage backend used for local
// development and tests. All state lives behind one mutex; transactions hold
// that mutex for their whole duration and keep an undo log for rollback.
package memoryRepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/models"
)

type txKey struct{}

type txState struct {
	store *Store
	undo  []func()
}

// Store implements the service and booking repositories in memory.
type Store struct {
	mu       sync.Mutex
	services map[string]models.Service
	bookings map[string]models.Booking
}

func New() *Store {
	return &Store{
		services: make(map[string]models.Service),
		bookings: make(map[string]models.Booking),
	}
}

// NewStore wires a fresh in-memory backend into a repository.Store.
func NewStore() *repository.Store {
	s := New()
	return &repository.Store{
		Services: &ServiceRepo{s},
		Bookings: &BookingRepo{s},
		Tx:       s,
		Ping:     func(context.Context) error { return nil },
		Close:    func(context.Context) error { return nil },
	}
}

// acquire locks the store unless ctx already carries a transaction on it.
func (s *Store) acquire(ctx context.Context) (*txState, func()) {
	if tx, ok := ctx.Value(txKey{}).(*txState); ok && tx.store == s {
		return tx, func() {}
	}
	s.mu.Lock()
	return nil, s.mu.Unlock
}

// WithinTransaction serializes fn against every other store access and
// reverts its writes when fn fails. Nested calls join the outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*txState); ok && tx.store == s {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txState{store: s}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		return err
	}
	return nil
}

func (s *Store) putService(tx *txState, svc models.Service) {
	if tx != nil {
		prev, existed := s.services[svc.ID]
		tx.undo = append(tx.undo, func() {
			if existed {
				s.services[svc.ID] = prev
			} else {
				delete(s.services, svc.ID)
			}
		})
	}
	s.services[svc.ID] = svc
}

func (s *Store) putBooking(tx *txState, b models.Booking) {
	if tx != nil {
		prev, existed := s.bookings[b.ID]
		tx.undo = append(tx.undo, func() {
			if existed {
				s.bookings[b.ID] = prev
			} else {
				delete(s.bookings, b.ID)
			}
		})
	}
	s.bookings[b.ID] = b
}

// ServiceRepo is the in-memory ServiceRepository.
type ServiceRepo struct{ s *Store }

func (r *ServiceRepo) Create(ctx context.Context, svc *models.Service) error {
	tx, unlock := r.s.acquire(ctx)
	defer unlock()

	now := time.Now()
	svc.CreatedAt = now
	svc.UpdatedAt = now
	r.s.putService(tx, cloneService(*svc))
	return nil
}

func (r *ServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	_, unlock := r.s.acquire(ctx)
	defer unlock()

	svc, ok := r.s.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneService(svc)
	return &out, nil
}

func (r *ServiceRepo) Search(ctx context.Context, filter models.ServiceSearch) ([]models.Service, error) {
	_, unlock := r.s.acquire(ctx)
	defer unlock()

	out := make([]models.Service, 0)
	for _, svc := range r.s.services {
		if matches(svc, filter) {
			out = append(out, cloneService(svc))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ServiceRepo) UpdatePrice(ctx context.Context, id string, price models.Amount) error {
	return r.update(ctx, id, func(svc *models.Service) { svc.PricePerPerson = price })
}

func (r *ServiceRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.update(ctx, id, func(svc *models.Service) { svc.IsActive = active })
}

func (r *ServiceRepo) DecrementAvailability(ctx context.Context, id string, n int) (bool, error) {
	tx, unlock := r.s.acquire(ctx)
	defer unlock()

	svc, ok := r.s.services[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if svc.Availability < n {
		return false, nil
	}
	svc.Availability -= n
	svc.UpdatedAt = time.Now()
	r.s.putService(tx, svc)
	return true, nil
}

func (r *ServiceRepo) IncrementAvailability(ctx context.Context, id string, n int) error {
	return r.update(ctx, id, func(svc *models.Service) { svc.Availability += n })
}

func (r *ServiceRepo) update(ctx context.Context, id string, mutate func(*models.Service)) error {
	tx, unlock := r.s.acquire(ctx)
	defer unlock()

	svc, ok := r.s.services[id]
	if !ok {
		return repository.ErrNotFound
	}
	mutate(&svc)
	svc.UpdatedAt = time.Now()
	r.s.putService(tx, svc)
	return nil
}

func matches(svc models.Service, f models.ServiceSearch) bool {
	if !svc.IsActive {
		return false
	}
	if f.Destination != "" {
		d := strings.ToLower(f.Destination)
		if !containsFold(svc.Location, d) && !containsFold(svc.City, d) && !containsFold(svc.State, d) {
			return false
		}
	}
	if f.City != "" && !containsFold(svc.City, strings.ToLower(f.City)) {
		return false
	}
	if f.State != "" && !containsFold(svc.State, strings.ToLower(f.State)) {
		return false
	}
	if f.Type != "" && svc.Type != f.Type {
		return false
	}
	if f.MinPrice != nil && svc.PricePerPerson < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && svc.PricePerPerson > *f.MaxPrice {
		return false
	}
	if f.MinRating > 0 && svc.Rating < f.MinRating {
		return false
	}
	return true
}

func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}

func cloneService(svc models.Service) models.Service {
	if svc.Amenities != nil {
		svc.Amenities = append([]string(nil), svc.Amenities...)
	}
	return svc
}
