package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the process-wide settings loaded once at startup.
type Config struct {
	BotToken     string
	AdminIDs     []int64
	DatabasePath string
}

// Load reads configuration from the environment (and .env if present).
// The bot token is required; a missing token is an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := Config{
		BotToken:     os.Getenv("BOT_API_KEY"),
		DatabasePath: getEnv("DB_PATH", "./userData.db"),
	}

	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("BOT_API_KEY environment variable is required")
	}

	for _, key := range []string{"ADMIN_ID", "ADMIN_ID2"} {
		raw := os.Getenv(key)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", key, raw, err)
		}
		cfg.AdminIDs = append(cfg.AdminIDs, id)
	}

	return cfg, nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
