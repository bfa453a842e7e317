package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/httpserver"
	"storefront/internal/metrics"
	"storefront/internal/migrate"
	cartrepo "storefront/internal/repository/cart"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"
	cartsvc "storefront/internal/service/cart"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	usersvc "storefront/internal/service/user"

	"github.com/shopspring/decimal"
)

const tokenPurgeInterval = time.Hour

func main() {
	// Prices go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString, db.WithMaxConns(cfg.DBMaxConns), db.WithQueryLog(logger))
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	if err := migrate.Apply(ctx, dbpool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	m := metrics.New()
	checks := []httpserver.Check{{Name: "postgres", Ping: dbpool.Ping}}

	productOpts := []productsvc.Option{productsvc.WithMetrics(m), productsvc.WithLogger(logger)}
	if cfg.RedisAddr != "" {
		c := cache.NewRedisCache(cfg.RedisAddr, "storefront")
		defer c.Close()
		if err := c.Ping(ctx); err != nil {
			logger.Printf("redis unavailable addr=%s error=%v, product cache disabled", cfg.RedisAddr, err)
		} else {
			productOpts = append(productOpts, productsvc.WithCache(c, cfg.ProductCacheTTL))
			checks = append(checks, httpserver.Check{Name: "redis", Ping: c.Ping})
			logger.Printf("product cache enabled addr=%s ttl=%s", cfg.RedisAddr, cfg.ProductCacheTTL)
		}
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		nc, err := events.ConnectNATS(cfg.NATSURL, logger)
		if err != nil {
			logger.Fatalf("connect nats: %v", err)
		}
		publisher = nc
		checks = append(checks, httpserver.Check{Name: "nats", Ping: nc.Ping})
	}
	defer publisher.Close()

	productService := productsvc.New(productrepo.NewPostgres(dbpool, logger), productOpts...)
	userService := usersvc.New(userrepo.NewPostgres(dbpool, logger), tokenrepo.NewPostgres(dbpool), cfg.TokenTTL, logger)
	cartService := cartsvc.New(cartrepo.NewPostgres(dbpool, logger), productService, m, logger)
	orderService := ordersvc.New(orderrepo.NewPostgres(dbpool, logger), publisher, m, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		UserSvc:     userService,
		ProductSvc:  productService,
		CartSvc:     cartService,
		OrderSvc:    orderService,
		Metrics:     m,
		CORSOrigins: cfg.CORSOrigins,
		Checks:      checks,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	go purgeTokens(ctx, userService, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("received shutdown signal")
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

func purgeTokens(ctx context.Context, users *usersvc.Service, logger *log.Logger) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := users.PurgeExpiredTokens(ctx)
			if err != nil {
				logger.Printf("purge tokens: %v", err)
				continue
			}
			if n > 0 {
				logger.Printf("purged %d expired tokens", n)
			}
		}
	}
}
