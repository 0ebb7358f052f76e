// Package config loads application configuration from environment
// variables. Required variables halt startup when missing; optional ones
// fall back to sensible defaults.
package config

import (
	"log"
	"os"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env              string        // application environment (e.g. "dev", "prod")
	Port             string        // HTTP port to listen on
	DBUser           string        // database username
	DBPass           string        // database password (optional)
	DBHost           string        // database host address
	DBPort           string        // database port number
	DBName           string        // database name
	JWTSecret        string        // shared service-auth secret; empty disables auth
	HoldTTL          time.Duration // lease attached to every seat hold
	SweepInterval    time.Duration // how often expired holds are released
	PaymentTopicURL  string        // endpoint for the payment request topic; empty disables
	ResponseTopicURL string        // endpoint for the seat response topic; empty disables
}

// Load reads configuration from environment variables and returns a
// Config. Required variables are enforced by must(); missing values cause
// the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"),
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		HoldTTL:          envDur("HOLD_TTL", 5*time.Minute),
		SweepInterval:    envDur("SWEEP_INTERVAL", 30*time.Second),
		PaymentTopicURL:  os.Getenv("TOPIC_ROUTE_PAYMENT"),
		ResponseTopicURL: os.Getenv("TOPIC_ROUTE_SEAT_RESPONSE"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
