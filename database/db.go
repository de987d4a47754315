package database

import (
	"context"
	"fmt"
	"time"

	"github.com/KowsickReddy/TravelGo/config"
	"github.com/KowsickReddy/TravelGo/database/repository"
	memoryRepo "github.com/KowsickReddy/TravelGo/database/repository/memory"
	mongoRepo "github.com/KowsickReddy/TravelGo/database/repository/mongo"
	postgresRepo "github.com/KowsickReddy/TravelGo/database/repository/postgres"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ConnectMongo opens and verifies a MongoDB connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// ConnectPostgres opens a gorm connection pool on the given DSN.
func ConnectPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// Open builds the storage backend selected by cfg.DBDriver.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*repository.Store, error) {
	switch cfg.DBDriver {
	case "mongo":
		client, err := ConnectMongo(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to MongoDB", zap.String("database", cfg.DatabaseName))
		return mongoRepo.NewStore(client, cfg.DatabaseName, logger), nil
	case "postgres":
		db, err := ConnectPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to PostgreSQL")
		return postgresRepo.NewStore(db)
	case "memory":
		logger.Warn("Using in-memory storage; data is lost on restart")
		return memoryRepo.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
