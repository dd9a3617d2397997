package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/constants"
)

// Config ilovaning konfiguratsiyasi
type Config struct {
	TelegramToken string
	GeminiAPIKey  string
	AdminPassword string
	PostgresDSN   string
	CatalogXLSX   string

	ConversationCacheSize int
	ConversationTTL       time.Duration
}

// Load konfiguratsiyani yuklash
func Load() (*Config, error) {
	// .env faylini yuklash (mavjud bo'lsa)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		PostgresDSN:   strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		CatalogXLSX:   strings.TrimSpace(os.Getenv("CATALOG_XLSX")),

		ConversationCacheSize: getEnvInt("CONVERSATION_CACHE_SIZE", constants.ConversationCacheSize),
		ConversationTTL:       getEnvDuration("CONVERSATION_TTL", constants.ConversationTTL),
	}

	if strings.TrimSpace(cfg.TelegramToken) == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable o'rnatilmagan")
	}
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable o'rnatilmagan")
	}

	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
