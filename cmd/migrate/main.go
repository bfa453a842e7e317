package main

import (
	"context"
	"flag"
	"log"
	"os"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/migrate"
)

func main() {
	var down, status bool
	flag.BoolVar(&down, "down", false, "Revert the most recent migration")
	flag.BoolVar(&status, "status", false, "Print the current schema version and exit")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	switch {
	case status:
	case down:
		if err := migrate.Rollback(ctx, pool); err != nil {
			logger.Fatalf("rollback migration: %v", err)
		}
		logger.Println("last migration reverted")
	default:
		if err := migrate.Apply(ctx, pool); err != nil {
			logger.Fatalf("apply migrations: %v", err)
		}
		logger.Println("migrations applied")
	}

	version, dirty, err := migrate.Version(ctx, pool)
	if err != nil {
		logger.Fatalf("read version: %v", err)
	}
	logger.Printf("schema version=%d dirty=%t", version, dirty)
}
