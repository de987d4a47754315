// Command seed fills an empty service catalog with sample listings and can
// mint development access tokens.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/KowsickReddy/TravelGo/config"
	"github.com/KowsickReddy/TravelGo/database"
	"github.com/KowsickReddy/TravelGo/models"
	"github.com/KowsickReddy/TravelGo/services/catalog"
	"github.com/KowsickReddy/TravelGo/utils"

	"go.uber.org/zap"
)

func main() {
	tokenFor := flag.String("token", "", "print an access token for this user id instead of seeding")
	email := flag.String("email", "", "email claim of the printed token")
	admin := flag.Bool("admin", false, "give the printed token the admin role")
	ttl := flag.Duration("ttl", 24*time.Hour, "lifetime of the printed token")
	flag.Parse()

	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()

	if *tokenFor != "" {
		if cfg.JWTSecret == "" {
			log.Fatal("JWT_SECRET must be set to mint tokens")
		}
		identity := models.Identity{ID: *tokenFor, Email: *email, Role: models.RoleUser}
		if *admin {
			identity.Role = models.RoleAdmin
		}
		token, err := utils.GenerateToken([]byte(cfg.JWTSecret), identity, *ttl)
		if err != nil {
			log.Fatalf("Failed to sign token: %v", err)
		}
		fmt.Println(token)
		return
	}

	if cfg.DBDriver == "memory" {
		log.Fatal("Nothing to seed: DB_DRIVER=memory seeds itself on startup")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := database.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer func() { _ = store.Close(context.Background()) }()

	n, err := catalog.Seed(ctx, store.Services, logger)
	if err != nil {
		logger.Fatal("Seeding failed", zap.Error(err))
	}
	if n == 0 {
		fmt.Println("Catalog already has listings, nothing seeded")
		return
	}
	fmt.Printf("Seeded %d services\n", n)
}
