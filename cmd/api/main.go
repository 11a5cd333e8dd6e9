// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/freshmilk-storefront/internal/config"
	"github.com/your-org/freshmilk-storefront/internal/domain/cart"
	"github.com/your-org/freshmilk-storefront/internal/domain/checkout"
	"github.com/your-org/freshmilk-storefront/internal/domain/coupon"
	"github.com/your-org/freshmilk-storefront/internal/domain/pricing"
	"github.com/your-org/freshmilk-storefront/internal/infrastructure/backend"
	"github.com/your-org/freshmilk-storefront/internal/infrastructure/database/postgres"
	"github.com/your-org/freshmilk-storefront/internal/infrastructure/database/redis"
	"github.com/your-org/freshmilk-storefront/internal/infrastructure/messaging"
	"github.com/your-org/freshmilk-storefront/internal/interfaces/http"
	"github.com/your-org/freshmilk-storefront/internal/pkg/logger"
	"github.com/your-org/freshmilk-storefront/internal/pkg/pdf"
)

type eventPublisher interface {
	checkout.EventPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting storefront")

	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redis.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.Health(startupCtx); err != nil {
		log.WithError(err).Fatal("Database health check failed")
	}
	if err := redisClient.Health(startupCtx); err != nil {
		log.WithError(err).Fatal("Redis health check failed")
	}
	cancel()

	migration := postgres.NewMigration(db.GetDB(), log)
	if err := migration.RunAutoMigrations(); err != nil {
		log.WithError(err).Fatal("Database migration failed")
	}
	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("Index creation failed")
	}

	// Signed-in carts live in Postgres, guest carts in Redis with a TTL
	carts := cart.NewService(cart.RoutedRepository{
		Users:  postgres.NewCartRepository(db.GetDB()),
		Guests: redis.NewCartRepository(redisClient, cfg),
	}, log, cart.WithBadgeHook(func(owner cart.Owner, badge cart.Badge) {
		log.WithFields(logrus.Fields{
			"owner": owner.String(),
			"count": badge.Count,
		}).Debug("Cart badge updated")
	}))

	var events eventPublisher = messaging.NopPublisher{}
	if cfg.Kafka.Enabled {
		events = messaging.NewPublisher(cfg, log)
	}
	defer events.Close()

	api := backend.NewClient(cfg, log)
	shipping := pricing.ShippingRule{
		FreeThreshold: cfg.Pricing.FreeShippingThreshold,
		FlatFee:       cfg.Pricing.ShippingFee,
	}
	checkoutService := checkout.NewService(checkout.Dependencies{
		Carts:       carts,
		Calculator:  pricing.NewCalculator(shipping),
		Selector:    coupon.NewSelector(nil),
		Orders:      api,
		Memberships: api,
		Coupons:     api,
		Handoffs:    postgres.NewHandoffRepository(db.GetDB()),
		Events:      events,
		Receipts:    pdf.NewService(cfg),
		Logger:      log,
	})

	server := http.NewServer(http.Dependencies{
		Config:      cfg,
		Logger:      log,
		Carts:       carts,
		Catalog:     api,
		Checkout:    checkoutService,
		RedisClient: redisClient.GetClient(),
		Checks: map[string]http.HealthChecker{
			"database": db,
			"redis":    redisClient,
		},
	})

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	log.Info("Server shutdown completed")
}
