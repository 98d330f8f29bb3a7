package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataPath         string
	DataFallbackPath string
	HTTPAddr         string
	LogLevel         string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	SQLitePath       string

	ExportDir  string
	MaxRetries int

	ChromeBin           string
	SnapshotDir         string
	SnapshotConcurrency int
	SnapshotRateLimitMs int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DataPath:         getEnv("DATA_PATH", "/app/data/Airbnb_site_hotel_new.csv"),
		DataFallbackPath: getEnv("DATA_FALLBACK_PATH", "data/Airbnb_site_hotel_new.csv"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "dashboard"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "dashboard123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		SQLitePath:       getEnv("SQLITE_PATH", "./output/listings.db"),

		ExportDir:  getEnv("EXPORT_DIR", "./output"),
		MaxRetries: getEnvInt("MAX_RETRIES", 3),

		ChromeBin:           getEnv("CHROME_BIN", ""),
		SnapshotDir:         getEnv("SNAPSHOT_DIR", "./output/snapshots"),
		SnapshotConcurrency: getEnvInt("SNAPSHOT_CONCURRENCY", 2),
		SnapshotRateLimitMs: getEnvInt("SNAPSHOT_RATE_LIMIT_MS", 500),
	}
}

// DataPaths returns the dataset locations in the order they are tried.
func (c *Config) DataPaths() []string {
	paths := []string{c.DataPath}
	if c.DataFallbackPath != "" && c.DataFallbackPath != c.DataPath {
		paths = append(paths, c.DataFallbackPath)
	}
	return paths
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
