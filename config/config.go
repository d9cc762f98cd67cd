package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port            int
	Market          string
	LogLevel        string
	RateLimitPerSec float64
	RateLimitBurst  int
}

// Load reads .env when present and resolves the configuration from the
// environment with development defaults.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("config: skipping .env: %v", err)
	}

	return &Config{
		Port:            envInt("PORT", 8000),
		Market:          envString("MARKET", "TEST/PAIR"),
		LogLevel:        envString("LOG_LEVEL", "info"),
		RateLimitPerSec: envFloat("RATE_LIMIT_PER_SEC", 50),
		RateLimitBurst:  envInt("RATE_LIMIT_BURST", 100),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %g", key, v, fallback)
		return fallback
	}
	return f
}
