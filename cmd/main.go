package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"

	"github.com/tonmoys423/teashop/internal/application"
	"github.com/tonmoys423/teashop/internal/config"
	"github.com/tonmoys423/teashop/internal/kafka"
	"github.com/tonmoys423/teashop/internal/logger"
	"github.com/tonmoys423/teashop/internal/migrate"
	"github.com/tonmoys423/teashop/internal/presentation"
	"github.com/tonmoys423/teashop/internal/repository"
	"github.com/tonmoys423/teashop/internal/sslcommerz"
)

func main() {
	logger.Init()
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Warn("config load failed", "err", err)
		os.Exit(1)
	}

	// DB pool
	pool, err := pgxpool.New(context.Background(), cfg.DB_STRING)
	if err != nil {
		logger.Warn("pgxpool new failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	// the DB container may come up after us
	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		return retry.RetryableError(pool.Ping(ctx))
	})
	if err != nil {
		logger.Warn("db ping failed", "err", err)
		os.Exit(1)
	}
	logger.Info("db connected")

	if err := migrate.Up(cfg.DB_STRING); err != nil {
		logger.Warn("migrations failed", "err", err)
		os.Exit(1)
	}

	// Wiring
	orderRepo := repository.NewOrderRepository(pool)
	productRepo := repository.NewProductRepository(pool)

	gateway := sslcommerz.NewClient(sslcommerz.Config{
		StoreID:       cfg.SSLCOMMERZ_STORE_ID,
		StorePassword: cfg.SSLCOMMERZ_STORE_PASSWORD,
		APIURL:        cfg.SSLCOMMERZ_API_URL,
	})
	logger.Info("payment gateway configured", "environment", cfg.ENVIRONMENT, "api_url", cfg.SSLCOMMERZ_API_URL)

	var pub application.Publisher
	if cfg.KAFKA_BROKERS != "" {
		prod := kafka.NewProducer(cfg.KAFKA_BROKERS, cfg.KAFKA_TOPIC)
		defer prod.Close()
		pub = prod
		logger.Info("kafka producer configured", "brokers", cfg.KAFKA_BROKERS, "topic", cfg.KAFKA_TOPIC)
	}

	orders := application.NewOrdersService(orderRepo)
	products := application.NewProductsService(productRepo)
	payments := application.NewPaymentsService(orderRepo, gateway, pub)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORS_ORIGINS, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// API
	h := presentation.NewHandler(orders, products, payments, cfg.FRONTEND_URL)
	h.Register(r)

	addr := ":" + cfg.HTTP_PORT
	logger.Info("starting http", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Warn("http server crashed", "err", err)
		os.Exit(1)
	}
}
