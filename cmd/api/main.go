package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"furnistore/internal/cache"
	"furnistore/internal/client"
	"furnistore/internal/config"
	"furnistore/internal/events"
	"furnistore/internal/handler"
	"furnistore/internal/repository"
	"furnistore/internal/server"
	"furnistore/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := client.InitDB(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	razorpayClient := client.NewRazorpayClient(&cfg.Razorpay)

	var catalogCache cache.Cache
	if cfg.Redis.Addr != "" {
		catalogCache, err = cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("redis init failed", zap.Error(err))
		}
		defer catalogCache.Close()
	}

	publisher := events.NewNoopPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Fatal("kafka init failed", zap.Error(err))
		}
	}
	defer publisher.Close()

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	couponService := service.NewCouponService(couponRepo)
	checkoutService := service.NewCheckoutService(
		db, razorpayClient,
		orderRepo, productRepo, webhookEventRepo,
		couponService, publisher,
		service.CheckoutConfig{
			KeyID:         cfg.Razorpay.KeyID,
			KeySecret:     cfg.Razorpay.KeySecret,
			WebhookSecret: cfg.Razorpay.WebhookSecret,
			CODThreshold:  cfg.COD.Threshold,
			CODFeeBelow:   cfg.COD.FeeBelow,
			CODFeeAbove:   cfg.COD.FeeAbove,
		},
		logger,
	)
	catalogService := service.NewCatalogService(productRepo, catalogCache,
		time.Duration(cfg.Redis.TTLSeconds)*time.Second, logger)
	orderService := service.NewOrderService(db, orderRepo, logger)

	srv := server.NewServer(
		handler.NewCheckoutHandler(checkoutService, logger),
		handler.NewCatalogHandler(catalogService),
		handler.NewOrderHandler(orderService),
		handler.NewCouponHandler(couponService),
		cfg.Admin.Token,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	logger.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		logger.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}

func newLogger(cfg config.Log) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
