package booking

import (
	"context"
	"os"
	"testing"

	"github.com/KowsickReddy/TravelGo/database"
	"github.com/KowsickReddy/TravelGo/database/repository"
	memoryRepo "github.com/KowsickReddy/TravelGo/database/repository/memory"
	mongoRepo "github.com/KowsickReddy/TravelGo/database/repository/mongo"
	postgresRepo "github.com/KowsickReddy/TravelGo/database/repository/postgres"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// storeBackends returns the storage backends available to this run. The
// memory store is always present; mongo and postgres join when
// MONGO_TEST_URI (a replica set) or POSTGRES_TEST_DSN is set.
func storeBackends(t *testing.T) map[string]func(t *testing.T) *repository.Store {
	t.Helper()
	backends := map[string]func(t *testing.T) *repository.Store{
		"memory": func(*testing.T) *repository.Store { return memoryRepo.NewStore() },
	}
	if uri := os.Getenv("MONGO_TEST_URI"); uri != "" {
		backends["mongo"] = func(t *testing.T) *repository.Store {
			client, err := database.ConnectMongo(context.Background(), uri)
			require.NoError(t, err)
			dbName := "travelgo_booking_test_" + uuid.NewString()[:8]
			t.Cleanup(func() {
				_ = client.Database(dbName).Drop(context.Background())
				_ = client.Disconnect(context.Background())
			})
			return mongoRepo.NewStore(client, dbName, zap.NewNop())
		}
	}
	if dsn := os.Getenv("POSTGRES_TEST_DSN"); dsn != "" {
		backends["postgres"] = func(t *testing.T) *repository.Store {
			db, err := database.ConnectPostgres(dsn)
			require.NoError(t, err)
			store, err := postgresRepo.NewStore(db)
			require.NoError(t, err)
			t.Cleanup(func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			})
			return store
		}
	}
	return backends
}
