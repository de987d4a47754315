package postgresRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/models"

	"gorm.io/gorm"
)

// ServiceRepo implements repository.ServiceRepository with gorm.
type ServiceRepo struct{ s *Store }

func (r *ServiceRepo) Create(ctx context.Context, svc *models.Service) error {
	if err := r.s.db(ctx).Create(svc).Error; err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *ServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	var svc models.Service
	err := r.s.db(ctx).Where("id = ?", id).First(&svc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching service with id %s: %w", id, err)
	}
	return &svc, nil
}

func (r *ServiceRepo) Search(ctx context.Context, f models.ServiceSearch) ([]models.Service, error) {
	q := r.s.db(ctx).Where("is_active = ?", true)
	if f.Destination != "" {
		like := likePattern(f.Destination)
		q = q.Where("location ILIKE ? OR city ILIKE ? OR state ILIKE ?", like, like, like)
	}
	if f.City != "" {
		q = q.Where("city ILIKE ?", likePattern(f.City))
	}
	if f.State != "" {
		q = q.Where("state ILIKE ?", likePattern(f.State))
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.MinPrice != nil {
		q = q.Where("price_per_person >= ?", f.MinPrice.Minor())
	}
	if f.MaxPrice != nil {
		q = q.Where("price_per_person <= ?", f.MaxPrice.Minor())
	}
	if f.MinRating > 0 {
		q = q.Where("rating >= ?", f.MinRating)
	}

	services := make([]models.Service, 0)
	if err := q.Order("rating DESC").Order("id").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("error searching services: %w", err)
	}
	return services, nil
}

func (r *ServiceRepo) UpdatePrice(ctx context.Context, id string, price models.Amount) error {
	return r.updateColumn(ctx, id, "price_per_person", price.Minor())
}

func (r *ServiceRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.updateColumn(ctx, id, "is_active", active)
}

// DecrementAvailability locks the service row, checks the remaining
// capacity and decrements it. Outside a caller transaction it opens its own.
func (r *ServiceRepo) DecrementAvailability(ctx context.Context, id string, n int) (bool, error) {
	reserved := false
	err := r.s.db(ctx).Transaction(func(tx *gorm.DB) error {
		var svc models.Service
		if err := lockRow(tx, &svc, id); err != nil {
			return err
		}
		if svc.Availability < n {
			return nil
		}
		res := tx.Model(&models.Service{}).Where("id = ?", id).
			Update("availability", gorm.Expr("availability - ?", n))
		if res.Error != nil {
			return res.Error
		}
		reserved = true
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, err
		}
		return false, fmt.Errorf("failed to decrement availability for service %s: %w", id, err)
	}
	return reserved, nil
}

func (r *ServiceRepo) IncrementAvailability(ctx context.Context, id string, n int) error {
	res := r.s.db(ctx).Model(&models.Service{}).Where("id = ?", id).
		Update("availability", gorm.Expr("availability + ?", n))
	if res.Error != nil {
		return fmt.Errorf("failed to increment availability for service %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ServiceRepo) updateColumn(ctx context.Context, id, column string, value interface{}) error {
	res := r.s.db(ctx).Model(&models.Service{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("failed to update service with id %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
