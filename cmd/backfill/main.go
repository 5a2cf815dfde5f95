// Command backfill recomputes the derived columns (subtotal, total, paid,
// balance, status) for every invoice from its stored items and payments.
// Run it after data imports or manual corrections.
// Usage: go run ./cmd/backfill
package main

import (
	"context"
	"fmt"
	"log"

	"cadesk/internal/config"
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

	invoiceRepo := postgres.NewInvoiceRepo(db)

	n, err := invoiceRepo.RederiveAll(context.Background())
	if err != nil {
		return fmt.Errorf("rederiving invoices: %w", err)
	}

	log.Printf("backfill complete: %d invoices rederived", n)
	return nil
}
