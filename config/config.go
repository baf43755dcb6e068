package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	FrontendURL     string
	LoginPassword   string
	JWTSecret       string
	TokenExpiration time.Duration

	DataDir              string
	DataFile             string
	SnapshotFile         string
	MediaDir             string
	SnapshotMaxPerKey    int
	RecycleRetentionDays int

	UnsplashAccessKey string

	LoginMaxAttempts int
	LoginWindow      time.Duration
}

func Load() *Config {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	tokenExp, err := time.ParseDuration(getEnv("TOKEN_EXPIRATION", "168h"))
	if err != nil {
		tokenExp = 168 * time.Hour
	}
	loginWindow, err := time.ParseDuration(getEnv("LOGIN_WINDOW", "10m"))
	if err != nil {
		loginWindow = 10 * time.Minute
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		LoginPassword:   getEnv("LOGIN_PASSWORD", "admin123"),
		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		TokenExpiration: tokenExp,

		DataDir:              getEnv("DATA_DIR", "data"),
		DataFile:             getEnv("DATA_FILE", "home.json"),
		SnapshotFile:         getEnv("SNAPSHOT_FILE", "snapshots.json"),
		MediaDir:             getEnv("MEDIA_DIR", "media"),
		SnapshotMaxPerKey:    getEnvIntClamped("SNAPSHOT_MAX_PER_KEY", 30, 5, 200),
		RecycleRetentionDays: getEnvIntClamped("RECYCLE_RETENTION_DAYS", 30, 1, 365),

		UnsplashAccessKey: getEnv("UNSPLASH_ACCESS_KEY", ""),

		LoginMaxAttempts: getEnvIntClamped("LOGIN_MAX_ATTEMPTS", 8, 1, 100),
		LoginWindow:      loginWindow,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntClamped(key string, defaultValue, min, max int) int {
	value := defaultValue
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			value = parsed
		}
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
