package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Environment string
	Port        string
	LogLevel    string

	// Postgres
	DatabaseURL string

	// Redis, optional; the cache layer degrades to direct reads without it
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Kafka, optional; events fall back to an in-process publisher
	KafkaBrokers []string

	// Admin token signing key
	JWTSecret string

	// Question image storage
	UploadDir string

	// CORS origin allow-list
	CORSOrigins []string
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; container deployments set real env vars.
	_ = godotenv.Load()

	cfg := &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		Port:          getEnv("PORT", "5000"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}

	origins := getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	cfg.CORSOrigins = splitAndTrim(origins)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		if cfg.Environment == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-only-secret"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
