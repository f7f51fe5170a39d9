package config

import (
	"os"
)

const (
	sandboxAPIURL = "https://sandbox.sslcommerz.com/gwprocess/v4/api.php"
	liveAPIURL    = "https://securepay.sslcommerz.com/gwprocess/v4/api.php"
)

type Config struct {
	HTTP_PORT   string `env:"HTTP_PORT"`
	DB_STRING   string `env:"DB_STRING"`
	ENVIRONMENT string `env:"ENVIRONMENT"`

	SSLCOMMERZ_STORE_ID       string `env:"SSLCOMMERZ_STORE_ID"`
	SSLCOMMERZ_STORE_PASSWORD string `env:"SSLCOMMERZ_STORE_PASSWORD"`
	SSLCOMMERZ_API_URL        string `env:"SSLCOMMERZ_API_URL"`

	FRONTEND_URL string `env:"FRONTEND_URL"`
	CORS_ORIGINS string `env:"CORS_ORIGINS"`

	KAFKA_BROKERS string `env:"KAFKA_BROKERS"`
	KAFKA_TOPIC   string `env:"KAFKA_TOPIC"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		HTTP_PORT:     os.Getenv("HTTP_PORT"),
		DB_STRING:     os.Getenv("DB_STRING"),
		ENVIRONMENT:   os.Getenv("ENVIRONMENT"),
		FRONTEND_URL:  os.Getenv("FRONTEND_URL"),
		CORS_ORIGINS:  os.Getenv("CORS_ORIGINS"),
		KAFKA_BROKERS: os.Getenv("KAFKA_BROKERS"),
		KAFKA_TOPIC:   os.Getenv("KAFKA_TOPIC"),
	}

	if cfg.HTTP_PORT == "" {
		cfg.HTTP_PORT = "8080"
	}
	if cfg.ENVIRONMENT == "" {
		cfg.ENVIRONMENT = "sandbox"
	}
	if cfg.FRONTEND_URL == "" {
		cfg.FRONTEND_URL = "http://localhost:3000"
	}
	if cfg.CORS_ORIGINS == "" {
		cfg.CORS_ORIGINS = "*"
	}
	if cfg.KAFKA_TOPIC == "" {
		cfg.KAFKA_TOPIC = "payment-events"
	}

	// sandbox vs live selects credentials and the gateway endpoint
	if cfg.ENVIRONMENT == "sandbox" {
		cfg.SSLCOMMERZ_STORE_ID = getenvDefault("SSLCOMMERZ_SANDBOX_STORE_ID", "teststore123")
		cfg.SSLCOMMERZ_STORE_PASSWORD = getenvDefault("SSLCOMMERZ_SANDBOX_STORE_PASSWORD", "testpassword")
		cfg.SSLCOMMERZ_API_URL = sandboxAPIURL
	} else {
		cfg.SSLCOMMERZ_STORE_ID = os.Getenv("SSLCOMMERZ_LIVE_STORE_ID")
		cfg.SSLCOMMERZ_STORE_PASSWORD = os.Getenv("SSLCOMMERZ_LIVE_STORE_PASSWORD")
		cfg.SSLCOMMERZ_API_URL = liveAPIURL
	}
	if v := os.Getenv("SSLCOMMERZ_API_URL"); v != "" {
		cfg.SSLCOMMERZ_API_URL = v
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
