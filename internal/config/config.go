package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        int
	DatabaseURL string
	CORSOrigin  string
}

// Load reads configuration from the environment, with a local .env file
// filling in anything the environment leaves unset.
func Load() (Config, error) {
	fileValues, err := godotenv.Read(".env")
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}

	cfg := Config{Port: 8080, CORSOrigin: "*"}
	if portRaw := firstNonEmpty(os.Getenv("PORT"), fileValues["PORT"]); portRaw != "" {
		port, err := strconv.Atoi(portRaw)
		if err != nil || port <= 0 {
			return Config{}, fmt.Errorf("invalid PORT: %q", portRaw)
		}
		cfg.Port = port
	}

	if origin := firstNonEmpty(os.Getenv("CORS_ORIGIN"), fileValues["CORS_ORIGIN"]); origin != "" {
		cfg.CORSOrigin = origin
	}

	cfg.DatabaseURL = firstNonEmpty(os.Getenv("DATABASE_URL"), fileValues["DATABASE_URL"])
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required (environment variable or .env)")
	}

	return cfg, nil
}

func firstNonEmpty(candidates ...string) string {
	for _, candidate := range candidates {
		if value := strings.TrimSpace(candidate); value != "" {
			return value
		}
	}
	return ""
}
