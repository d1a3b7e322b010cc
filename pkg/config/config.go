package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port         string `validate:"required,numeric"`
	Env          string `validate:"oneof=development staging production"`
	FrontendHost string `validate:"required"`

	// Aggregate document storage
	Storage StorageConfig

	// External APIs
	MobilityDB MobilityDBConfig

	// Admin endpoint
	Admin AdminConfig

	// Agency name refresh
	Agency AgencyConfig

	// Redis
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string `validate:"oneof=json console pretty"`

	// Monitoring
	MetricsEnabled bool
}

// StorageConfig selects and locates the aggregate document backend
type StorageConfig struct {
	Bucket        string
	BackendSource string
	StaticDir     string `validate:"required"`
	Region        string
}

// MobilityDBConfig holds MobilityDatabase API configuration
type MobilityDBConfig struct {
	// APIKey is the long-lived refresh token
	APIKey   string
	BaseURL  string        `validate:"required,url"`
	Timeout  time.Duration `validate:"gt=0"`
	MaxPages int           `validate:"gt=0"`
}

// AdminConfig guards the administrative endpoints
type AdminConfig struct {
	Token            string
	RefreshPerMinute int `validate:"gt=0"`
}

// AgencyConfig controls the scheduled agency name refresh
type AgencyConfig struct {
	RefreshSchedule string `validate:"required"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port:         getEnv("PORT", "8000"),
		Env:          getEnv("ENV", "development"),
		FrontendHost: getEnv("FRONTEND_HOST", "localhost:3000"),

		Storage: StorageConfig{
			Bucket:        getEnv("GTFS_RT_RATER_BUCKET", ""),
			BackendSource: strings.ToLower(getEnv("BACKEND_SOURCE", "")),
			StaticDir:     getEnv("STATIC_DATA_DIR", filepath.Join("examples", "aggregates")),
			Region:        getEnv("AWS_REGION", "us-east-1"),
		},

		MobilityDB: MobilityDBConfig{
			APIKey:   getEnv("MOBILITY_DB_API_KEY", ""),
			BaseURL:  getEnv("MOBILITY_DB_BASE_URL", "https://api.mobilitydatabase.org/v1"),
			Timeout:  getEnvAsDuration("MOBILITY_DB_TIMEOUT", "30s"),
			MaxPages: getEnvAsInt("MOBILITY_DB_MAX_PAGES", 1000),
		},

		Admin: AdminConfig{
			Token:            getEnv("ADMIN_TOKEN", ""),
			RefreshPerMinute: getEnvAsInt("ADMIN_REFRESH_PER_MINUTE", 6),
		},

		Agency: AgencyConfig{
			RefreshSchedule: getEnv("AGENCY_REFRESH_SCHEDULE", "@daily"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks struct tags on the whole tree. Callers that override fields
// after Load must call it again.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",        // Current directory
		"server/.env", // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
