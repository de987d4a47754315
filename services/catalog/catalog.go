package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/models"
	"github.com/KowsickReddy/TravelGo/services/inventory"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultCatalogService) Search(ctx context.Context, filter models.ServiceSearch) ([]models.Service, error) {
	filter.Type = strings.ToLower(strings.TrimSpace(filter.Type))
	if filter.Type != "" && !models.IsValidServiceType(filter.Type) {
		return nil, fmt.Errorf("%w: type must be hotel or bus", ErrInvalidInput)
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, fmt.Errorf("%w: min_price exceeds max_price", ErrInvalidInput)
	}

	key := searchKey(filter)
	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached, nil
	}

	services, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, services)
	return services, nil
}

// Get returns an active service.
func (s *DefaultCatalogService) Get(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !svc.Bookable() {
		return nil, fmt.Errorf("service %s: %w", id, ErrNotFound)
	}
	return svc, nil
}

func (s *DefaultCatalogService) Create(ctx context.Context, identity models.Identity, input models.ServiceInput) (*models.Service, error) {
	if !identity.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	svc := &models.Service{
		ID:             uuid.New().String(),
		Title:          input.Title,
		Description:    input.Description,
		Type:           input.Type,
		Location:       input.Location,
		City:           input.City,
		State:          input.State,
		PricePerPerson: input.PricePerPerson,
		Currency:       input.Currency,
		Availability:   input.Availability,
		ImageURL:       input.ImageURL,
		Rating:         input.Rating,
		Amenities:      input.Amenities,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)

	s.logger.Info("Service listed",
		zap.String("serviceID", svc.ID),
		zap.String("type", svc.Type),
		zap.String("city", svc.City),
		zap.Int("availability", svc.Availability),
		zap.String("adminID", identity.ID))
	return svc, nil
}

func (s *DefaultCatalogService) UpdatePrice(ctx context.Context, identity models.Identity, id string, price models.Amount) (*models.Service, error) {
	if !identity.IsAdmin() {
		return nil, ErrForbidden
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: price_per_person must be positive", ErrInvalidInput)
	}
	if err := s.repo.UpdatePrice(ctx, id, price); err != nil {
		return nil, s.mapErr(id, err)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("Service price updated",
		zap.String("serviceID", id), zap.String("price", price.String()), zap.String("adminID", identity.ID))
	return s.lookup(ctx, id)
}

func (s *DefaultCatalogService) Relist(ctx context.Context, identity models.Identity, id string, units int) (*models.Service, error) {
	if !identity.IsAdmin() {
		return nil, ErrForbidden
	}
	if units <= 0 {
		return nil, fmt.Errorf("%w: units must be positive", ErrInvalidInput)
	}
	if err := s.ledger.Release(ctx, id, units); err != nil {
		return nil, s.mapErr(id, err)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("Service capacity relisted",
		zap.String("serviceID", id), zap.Int("units", units), zap.String("adminID", identity.ID))
	return s.lookup(ctx, id)
}

func (s *DefaultCatalogService) SetActive(ctx context.Context, identity models.Identity, id string, active bool) (*models.Service, error) {
	if !identity.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, s.mapErr(id, err)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("Service visibility changed",
		zap.String("serviceID", id), zap.Bool("active", active), zap.String("adminID", identity.ID))
	return s.lookup(ctx, id)
}

func (s *DefaultCatalogService) lookup(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(id, err)
	}
	return svc, nil
}

func (s *DefaultCatalogService) mapErr(id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, inventory.ErrServiceNotFound) {
		return fmt.Errorf("service %s: %w", id, ErrNotFound)
	}
	return err
}

func validateInput(in *models.ServiceInput) error {
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	if !models.IsValidServiceType(in.Type) {
		return fmt.Errorf("%w: type must be hotel or bus", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.PricePerPerson <= 0 {
		return fmt.Errorf("%w: price_per_person must be positive", ErrInvalidInput)
	}
	if in.Availability < 0 {
		return fmt.Errorf("%w: availability cannot be negative", ErrInvalidInput)
	}
	if in.Rating < 0 || in.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 0 and 5", ErrInvalidInput)
	}
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = models.DefaultCurrency
	}
	if !isCurrencyCode(in.Currency) {
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidInput)
	}
	return nil
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
