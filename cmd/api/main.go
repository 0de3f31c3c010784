// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/promotion"
	"github.com/your-org/storefront-backend/internal/domain/tax"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/infrastructure/events"
	httpserver "github.com/your-org/storefront-backend/internal/interfaces/http"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	log := newLogger(cfg)
	log.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Infof("starting %s", cfg.App.Name)

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	migration := postgres.NewMigration(db.DB, log)
	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	// Shared primitives
	jwtManager := auth.NewJWTManager(cfg)
	passwordMgr := auth.NewPasswordManager(cfg)
	ledger := tax.NewLedger(cfg.Checkout.DefaultGSTRate)
	policy := pricing.ShippingPolicy{
		FreeThreshold: cfg.Checkout.FreeShippingThreshold,
		Fee:           cfg.Checkout.ShippingFee,
	}

	// Domain services
	userService := user.NewService(db.DB, jwtManager, passwordMgr)
	addressService := user.NewAddressService(db.DB)
	productService := product.NewService(db.DB)
	promotionService := promotion.NewService(db.DB)
	cartService := cart.NewService(db.DB, redisClient.GetClient(), productService)
	orderService := order.NewService(db.DB, order.NewSequence(db.DB))
	razorpay := payment.NewRazorpayClient(cfg.External.Razorpay, log)
	pdfService := pdf.NewService(cfg)

	var publisher checkout.Publisher
	if cfg.Events.Enabled {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Events, log)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	orchestrator := checkout.NewOrchestrator(
		checkout.NewRedisSessionStore(redisClient.GetClient()),
		cartService,
		orderService,
		addressService,
		promotionService,
		productService,
		razorpay,
		razorpay,
		publisher,
		ledger,
		policy,
		cfg.Checkout.Currency,
		log,
	)

	h := &routes.Handlers{
		Auth:     handlers.NewAuthHandler(userService, cartService),
		Address:  handlers.NewAddressHandler(addressService),
		Product:  handlers.NewProductHandler(productService),
		Cart:     handlers.NewCartHandler(cartService),
		Checkout: handlers.NewCheckoutHandler(orchestrator),
		Order:    handlers.NewOrderHandler(orderService, ledger),
		Invoice:  handlers.NewInvoiceHandler(orderService, ledger, pdfService),
	}

	server := httpserver.NewServer(cfg, log, db.DB, redisClient.GetClient(), h)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Errorf("failed to shutdown HTTP server gracefully: %v", err)
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()

	if cfg.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
