package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	CacheBackendPostgres = "postgres"
	CacheBackendBadger   = "badger"
)

// GooglePlacesConfig holds upstream API settings
type GooglePlacesConfig struct {
	APIKey          string
	BaseURL         string
	UpstreamTimeout time.Duration
}

// SearchConfig holds the tuning knobs of the search pipeline
type SearchConfig struct {
	DefaultRadiusKm   int
	PageDelay         time.Duration // continuation token activation latency
	MaxPages          int           // 0 = follow tokens until exhausted
	DetailTimeout     time.Duration
	DetailConcurrency int // 0 = unlimited fan-out
	Timeout           time.Duration
}

// CacheConfig holds the result cache backend settings
type CacheConfig struct {
	Backend    string // postgres | badger
	BadgerPath string
	Capacity   int
}

type Config struct {
	// Server
	ServerPort       string
	ServerEnv        string
	CORSAllowOrigins string

	// Database
	DatabaseURL string

	Cache        CacheConfig
	GooglePlaces GooglePlacesConfig
	Search       SearchConfig

	IndustriesFile string

	// SigNoz
	SigNozEndpoint string
}

// Load reads configuration from the environment, loading .env when present
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "5001"),
		ServerEnv:        getEnv("SERVER_ENV", "development"),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),

		DatabaseURL: getDatabaseURL(),

		Cache: CacheConfig{
			Backend:    getEnv("CACHE_BACKEND", CacheBackendPostgres),
			BadgerPath: getEnv("BADGER_PATH", "./data/cache"),
			Capacity:   getEnvAsInt("CACHE_CAPACITY", 1000),
		},

		GooglePlaces: GooglePlacesConfig{
			APIKey:          getEnv("GOOGLE_PLACES_API_KEY", ""),
			BaseURL:         getEnv("GOOGLE_MAPS_BASE_URL", "https://maps.googleapis.com"),
			UpstreamTimeout: time.Duration(getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 10)) * time.Second,
		},

		Search: SearchConfig{
			DefaultRadiusKm:   getEnvAsInt("DEFAULT_RADIUS_KM", 10),
			PageDelay:         time.Duration(getEnvAsInt("PAGE_DELAY_MS", 2000)) * time.Millisecond,
			MaxPages:          getEnvAsInt("MAX_PAGES", 0),
			DetailTimeout:     time.Duration(getEnvAsInt("DETAIL_TIMEOUT_SECONDS", 10)) * time.Second,
			DetailConcurrency: getEnvAsInt("DETAIL_CONCURRENCY", 0),
			Timeout:           time.Duration(getEnvAsInt("SEARCH_TIMEOUT_SECONDS", 60)) * time.Second,
		},

		IndustriesFile: getEnv("INDUSTRIES_FILE", "./data/industries.json"),

		SigNozEndpoint: getEnv("SIGNOZ_ENDPOINT", ""),
	}
}

// Validate reports settings the server cannot start with
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendPostgres, CacheBackendBadger:
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q (want %s or %s)", c.Cache.Backend, CacheBackendPostgres, CacheBackendBadger)
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("CACHE_CAPACITY must be positive, got %d", c.Cache.Capacity)
	}
	if c.Search.DefaultRadiusKm <= 0 {
		return fmt.Errorf("DEFAULT_RADIUS_KM must be positive, got %d", c.Search.DefaultRadiusKm)
	}
	if c.Search.PageDelay < 0 {
		return fmt.Errorf("PAGE_DELAY_MS must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDatabaseURL returns DATABASE_URL or builds it from individual env vars
func getDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "")
	dbname := getEnv("POSTGRES_DB", "companydata")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}
