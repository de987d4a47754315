package catalog

import (
	"context"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeedServices are the listings installed into an empty catalog.
var SeedServices = []models.Service{
	{
		Title:          "Taj Lake Palace",
		Type:           models.ServiceTypeHotel,
		Description:    "Heritage palace hotel on Lake Pichola with spa and rooftop dining.",
		Location:       "Lake Pichola",
		City:           "Udaipur",
		State:          "Rajasthan",
		PricePerPerson: 1250000,
		Availability:   15,
		Rating:         4.8,
		Amenities:      []string{"Free WiFi", "Free Breakfast", "Spa", "Pool", "Restaurant"},
	},
	{
		Title:          "Calangute Beach Resort",
		Type:           models.ServiceTypeHotel,
		Description:    "Beachfront resort a short walk from Calangute beach.",
		Location:       "Calangute",
		City:           "Goa",
		State:          "Goa",
		PricePerPerson: 450000,
		Availability:   20,
		Rating:         4.3,
		Amenities:      []string{"Free WiFi", "Pool", "Beach Access"},
	},
	{
		Title:          "Houseboat Stay Alleppey",
		Type:           models.ServiceTypeHotel,
		Description:    "Private backwater houseboat with chef and sundeck.",
		Location:       "Punnamada",
		City:           "Alappuzha",
		State:          "Kerala",
		PricePerPerson: 800000,
		Availability:   8,
		Rating:         4.6,
		Amenities:      []string{"All Meals", "AC Bedroom", "Sundeck"},
	},
	{
		Title:          "Mumbai - Pune Volvo Express",
		Type:           models.ServiceTypeBus,
		Description:    "Multi-axle AC sleeper with reclining seats and USB charging.",
		Location:       "Dadar",
		City:           "Mumbai",
		State:          "Maharashtra",
		PricePerPerson: 65000,
		Availability:   35,
		Rating:         4.4,
		Amenities:      []string{"WiFi", "AC", "Reclining Seats", "USB Charging"},
	},
	{
		Title:          "Bengaluru - Mysuru Comfort Coach",
		Type:           models.ServiceTypeBus,
		Description:    "Reliable daily coach with affordable fares.",
		Location:       "Majestic",
		City:           "Bengaluru",
		State:          "Karnataka",
		PricePerPerson: 35000,
		Availability:   28,
		Rating:         4.1,
		Amenities:      []string{"AC", "Reading Lights"},
	},
	{
		Title:          "Delhi - Jaipur Luxury Liner",
		Type:           models.ServiceTypeBus,
		Description:    "Premium coach with leather seats, snacks and entertainment.",
		Location:       "Kashmere Gate",
		City:           "Delhi",
		State:          "Delhi",
		PricePerPerson: 120000,
		Availability:   12,
		Rating:         4.7,
		Amenities:      []string{"WiFi", "AC", "Leather Seats", "Snacks", "Entertainment"},
	},
}

// Seed installs SeedServices when the catalog has no active listing yet and
// reports how many services were created.
func Seed(ctx context.Context, repo repository.ServiceRepository, logger *zap.Logger) (int, error) {
	existing, err := repo.Search(ctx, models.ServiceSearch{})
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for _, svc := range SeedServices {
		svc := svc
		svc.ID = uuid.New().String()
		svc.Currency = models.DefaultCurrency
		svc.IsActive = true
		if err := repo.Create(ctx, &svc); err != nil {
			return 0, err
		}
	}
	logger.Info("Seeded service catalog", zap.Int("services", len(SeedServices)))
	return len(SeedServices), nil
}
