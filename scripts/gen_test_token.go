package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/turningpoint/server/internal/auth"
	"codeberg.org/turningpoint/server/internal/config"
	"codeberg.org/turningpoint/server/turningpoint/users"
)

const (
	testEmail = "test@turningpoint.dev"
	testName  = "Test User"
)

// prints a token pair for a fixed test user, creating the user if needed
func main() {
	cfg, err := config.LoadEnvironmentVariables("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()

	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	repo := users.NewRepository(dbPool)

	user, err := repo.FindUserByEmail(ctx, testEmail)
	if err != nil {
		log.Fatalf("Failed to look up test user: %v", err)
	}

	if user == nil {
		hashed, err := auth.NewHasher(cfg.Password.BcryptCost).Hash("test-password")
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}

		user, err = repo.CreateUser(ctx, users.NewUser{
			Email:        testEmail,
			Name:         testName,
			PasswordHash: hashed,
		})
		if err != nil {
			log.Fatalf("Failed to create test user: %v", err)
		}

		fmt.Printf("Created test user: %s (ID: %d)\n", testEmail, user.ID)
	} else {
		fmt.Printf("Using existing test user (ID: %d)\n", user.ID)
	}

	pair, err := auth.NewCodec(cfg.Token).IssuePair(user.Profile())
	if err != nil {
		log.Fatalf("Failed to sign tokens: %v", err)
	}

	fmt.Printf("\nAccess token:\n%s\n\nRefresh token:\n%s\n\n", pair.AccessToken, pair.RefreshToken)
	fmt.Printf("Export for testing:\nexport TEST_TOKEN=\"%s\"\n", pair.AccessToken)
}
