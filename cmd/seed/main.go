// Command seed creates an initial admin user and a demo client so a fresh
// deployment can be logged into. Safe to re-run; existing rows are left alone.
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cadesk/internal/config"
	"cadesk/internal/domain"
	"cadesk/internal/repository/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	userRepo := postgres.NewUserRepo(db)
	clientRepo := postgres.NewClientRepo(db)
	ctx := context.Background()

	adminEmail := os.Getenv("CADESK_SEED_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@cadesk.in"
	}
	adminPassword := os.Getenv("CADESK_SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "changeme123"
		log.Println("WARN: using default admin password; set CADESK_SEED_ADMIN_PASSWORD")
	}

	if _, err := userRepo.GetByEmail(ctx, adminEmail); err == nil {
		log.Printf("admin user %s already exists, skipping", adminEmail)
	} else if errors.Is(err, domain.ErrNotFound) {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing admin password: %w", err)
		}
		admin := &domain.User{
			ID:           uuid.New(),
			Email:        adminEmail,
			PasswordHash: string(hash),
			FullName:     "Administrator",
			Role:         domain.RoleAdmin,
			IsActive:     true,
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			return fmt.Errorf("creating admin user: %w", err)
		}
		log.Printf("created admin user %s", adminEmail)
	} else {
		return fmt.Errorf("checking admin user: %w", err)
	}

	demo := &domain.Client{
		ID:           uuid.New(),
		Name:         "Demo Client Pvt Ltd",
		ContactEmail: "accounts@democlient.in",
		GSTIN:        "29AABCD1234E1Z5",
		PAN:          "AABCD1234E",
		IsActive:     true,
	}
	if err := clientRepo.Create(ctx, demo); err != nil {
		log.Printf("demo client not created (may already exist): %v", err)
	} else {
		log.Printf("created demo client %s (%s)", demo.Name, demo.ID)
	}

	return nil
}
