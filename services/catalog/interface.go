// Package catalog lists bookable services and lets administrators manage them.
package catalog

import (
	"context"
	"errors"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/models"
	"github.com/KowsickReddy/TravelGo/services/inventory"

	"go.uber.org/zap"
)

var (
	ErrNotFound     = errors.New("service not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("admin role required")
)

type CatalogService interface {
	Search(ctx context.Context, filter models.ServiceSearch) ([]models.Service, error)
	Get(ctx context.Context, id string) (*models.Service, error)

	Create(ctx context.Context, identity models.Identity, input models.ServiceInput) (*models.Service, error)
	// UpdatePrice only affects bookings created afterwards.
	UpdatePrice(ctx context.Context, identity models.Identity, id string, price models.Amount) (*models.Service, error)
	// Relist adds units of capacity to the service.
	Relist(ctx context.Context, identity models.Identity, id string, units int) (*models.Service, error)
	SetActive(ctx context.Context, identity models.Identity, id string, active bool) (*models.Service, error)
}

// DefaultCatalogService implements CatalogService.
type DefaultCatalogService struct {
	repo   repository.ServiceRepository
	ledger inventory.Ledger
	cache  SearchCache
	logger *zap.Logger
}

func NewCatalogService(repo repository.ServiceRepository, ledger inventory.Ledger, cache SearchCache, logger *zap.Logger) *DefaultCatalogService {
	if cache == nil {
		cache = NopCache{}
	}
	return &DefaultCatalogService{repo: repo, ledger: ledger, cache: cache, logger: logger}
}
