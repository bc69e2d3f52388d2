package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config captures the runtime configuration for the cliptube backend service.
type Config struct {
	AppPort            int
	MongoURI           string
	MongoDatabase      string
	LogLevel           string
	TempDir            string
	AccessTokenSecret  string
	AccessTokenTTL     time.Duration
	RefreshTokenSecret string
	RefreshTokenTTL    time.Duration
	GoogleClientID     string
	ObjectStore        ObjectStoreConfig
	AuthRateLimit      RateLimitConfig
}

// ObjectStoreConfig describes the S3-compatible bucket that hosts media assets.
type ObjectStoreConfig struct {
	Region        string
	Bucket        string
	Endpoint      string
	PublicBaseURL string
}

// RateLimitConfig bounds how often a client may hit sensitive endpoints.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Burst    int
	TTL      time.Duration
}

// Load reads configuration from environment variables, applying sensible defaults
// for local development. A .env file in the working directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppPort:            getInt("CLIPTUBE_PORT", 8080),
		MongoURI:           getString("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:      getString("MONGODB_DATABASE", "cliptube"),
		LogLevel:           getString("CLIPTUBE_LOG_LEVEL", "info"),
		TempDir:            getString("CLIPTUBE_TEMP_DIR", "public/temp"),
		AccessTokenSecret:  getString("ACCESS_TOKEN_SECRET", ""),
		AccessTokenTTL:     getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenSecret: getString("REFRESH_TOKEN_SECRET", ""),
		RefreshTokenTTL:    getDuration("REFRESH_TOKEN_TTL", 240*time.Hour),
		GoogleClientID:     getString("GOOGLE_CLIENT_ID", ""),
		ObjectStore: ObjectStoreConfig{
			Region:        getString("CLIPTUBE_S3_REGION", "us-east-1"),
			Bucket:        getString("CLIPTUBE_S3_BUCKET", "cliptube-media"),
			Endpoint:      getString("CLIPTUBE_S3_ENDPOINT", ""),
			PublicBaseURL: getString("CLIPTUBE_S3_PUBLIC_URL", ""),
		},
		AuthRateLimit: RateLimitConfig{
			Requests: getInt("CLIPTUBE_AUTH_RATE_REQUESTS", 10),
			Window:   getDuration("CLIPTUBE_AUTH_RATE_WINDOW", time.Minute),
			Burst:    getInt("CLIPTUBE_AUTH_RATE_BURST", 5),
			TTL:      getDuration("CLIPTUBE_AUTH_RATE_TTL", 5*time.Minute),
		},
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
