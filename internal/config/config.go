package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         string
	DatabaseURL  string
	RedisURL     string
	KafkaBrokers string

	PayPalBaseURL      string
	PayPalClientID     string
	PayPalClientSecret string
	ReturnURL          string
	CancelURL          string

	GatewayTimeout  time.Duration
	RefreshInterval time.Duration
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),

		PayPalBaseURL:      getEnv("PAYPAL_BASE_URL", "https://api.sandbox.paypal.com"),
		PayPalClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		ReturnURL:          getEnv("PAYPAL_RETURN_URL", "http://localhost:8080/api/v1/payments/success"),
		CancelURL:          getEnv("PAYPAL_CANCEL_URL", "http://localhost:8080/api/v1/payments/cancel"),

		GatewayTimeout:  getEnvSeconds("GATEWAY_TIMEOUT_SECONDS", 15),
		RefreshInterval: getEnvSeconds("REFRESH_INTERVAL_SECONDS", 5),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(fallback) * time.Second
}
