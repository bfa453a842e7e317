package main

import (
	"context"
	"flag"
	"log"
	"os"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/migrate"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"
	"storefront/internal/seed"
	productsvc "storefront/internal/service/product"
	usersvc "storefront/internal/service/user"
)

func main() {
	cfg := config.FromEnv()
	var catalogPath string
	flag.StringVar(&catalogPath, "catalog", cfg.CatalogSeedFile, "Path to a catalog YAML file (defaults to the built-in catalog)")
	flag.Parse()

	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	catalog, err := seed.LoadCatalog(catalogPath)
	if err != nil {
		logger.Fatalf("load catalog: %v", err)
	}

	products := productsvc.New(productrepo.NewPostgres(pool, logger), productsvc.WithLogger(logger))
	users := usersvc.New(userrepo.NewPostgres(pool, logger), tokenrepo.NewPostgres(pool), cfg.TokenTTL, logger)

	res, err := seed.New(products, users, logger).Apply(ctx, catalog, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Printf("seed applied products=%d admin=%s", res.Products, res.AdminID)
}
