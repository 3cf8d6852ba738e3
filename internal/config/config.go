package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Storage
	PostgresURL string
	RedisURL    string

	// Riot API
	RiotAPIKey      string
	RiotRegion      string
	RequestsPerSec  int
	RequestBurst    int
	FetchConcurrency int

	// Analysis
	MatchCount       int
	TimelineMatches  int
	ResultCacheTTL   time.Duration
	BlendModelWeight float64
}

// Load loads configuration from environment variables.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		RiotRegion:       getEnv("RIOT_REGION", "euw1"),
		RequestsPerSec:   getEnvInt("RIOT_REQUESTS_PER_SECOND", 15),
		RequestBurst:     getEnvInt("RIOT_REQUEST_BURST", 15),
		FetchConcurrency: getEnvInt("FETCH_CONCURRENCY", 5),

		MatchCount:      getEnvInt("MATCH_COUNT", 20),
		TimelineMatches: getEnvInt("TIMELINE_MATCHES", 5),
		ResultCacheTTL:  getEnvDuration("RESULT_CACHE_TTL", 10*time.Minute),

		// Final win probability = winRate*(1-w) + modelProbability*w.
		BlendModelWeight: getEnvFloat("BLEND_MODEL_WEIGHT", 0.3),
	}

	if cfg.BlendModelWeight < 0 || cfg.BlendModelWeight > 1 {
		return nil, fmt.Errorf("BLEND_MODEL_WEIGHT must be in [0,1], got %v", cfg.BlendModelWeight)
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	rawOrigins := strings.Split(origins, ",")
	for _, o := range rawOrigins {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.PostgresURL, err = getEnvRequired("POSTGRES_URL"); err != nil {
		return nil, err
	}
	if cfg.RedisURL, err = getEnvRequired("REDIS_URL"); err != nil {
		return nil, err
	}
	if cfg.RiotAPIKey, err = getEnvRequired("RIOT_API_KEY"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
