package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the environment-level settings of the redirect service.
type Config struct {
	Port               string
	DefaultRedirectUrl string
	NegCacheTTL        time.Duration
	NegCacheBudget     int64
	NegCacheSweep      time.Duration
	StoreTimeout       time.Duration
	ClickQueue         string
}

func LoadConfig() *Config {
	_ = godotenv.Load() // ignore error if .env not found (e.g. prod)

	return &Config{
		Port:               GetEnv("PORT", "2222"),
		DefaultRedirectUrl: GetEnv("DEFAULT_REDIRECT_URL", "https://azure.com"),
		NegCacheTTL:        GetEnvDuration("NEG_CACHE_TTL", time.Minute),
		NegCacheBudget:     GetEnvInt64("NEG_CACHE_BUDGET_BYTES", 4*1024*1024),
		NegCacheSweep:      GetEnvDuration("NEG_CACHE_SWEEP_INTERVAL", time.Minute),
		StoreTimeout:       GetEnvDuration("STORE_TIMEOUT", 5*time.Second),
		ClickQueue:         GetEnv("CLICK_QUEUE", "click_events"),
	}
}

func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func GetEnvInt64(key string, fallback int64) int64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
