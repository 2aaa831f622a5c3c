package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Scan     ScanConfig
	Latency  LatencyConfig
	Session  SessionConfig
	Report   ReportConfig
	App      AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// DatabaseConfig points at the postgres instance holding scan history.
// DSN wins over the individual fields; with neither set history stays in
// memory.
type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int
}

// Enabled reports whether a database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.DSN != "" || d.Host != ""
}

// RedisConfig enables the scan snapshot mirror when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ScanConfig struct {
	TickInterval    time.Duration
	Retention       time.Duration
	JanitorSchedule string
	StartRate       float64
	StartBurst      int
	SeedFixtures    bool
}

type LatencyConfig struct {
	Enabled     bool
	FailureRate float64
}

type SessionConfig struct {
	DBPath string
}

type ReportConfig struct {
	FontPath string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "sentinel"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Scan: ScanConfig{
			TickInterval:    getEnvAsDuration("SCAN_TICK_INTERVAL", 500*time.Millisecond),
			Retention:       getEnvAsDuration("SCAN_RETENTION", 24*time.Hour),
			JanitorSchedule: getEnv("SCAN_JANITOR_SCHEDULE", "@every 10m"),
			StartRate:       getEnvAsFloat("SCAN_START_RATE", 2),
			StartBurst:      getEnvAsInt("SCAN_START_BURST", 5),
			SeedFixtures:    getEnvAsBool("SEED_FIXTURES", env == "development"),
		},
		Latency: LatencyConfig{
			Enabled:     getEnvAsBool("SIMULATED_LATENCY_ENABLED", false),
			FailureRate: getEnvAsFloat("SIMULATED_FAILURE_RATE", 0),
		},
		Session: SessionConfig{
			DBPath: getEnv("SESSION_DB_PATH", "sentinel-session.db"),
		},
		Report: ReportConfig{
			FontPath: getEnv("REPORT_FONT_PATH", ""),
		},
		App: AppConfig{
			Environment: env,
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Scan.TickInterval <= 0 {
		return fmt.Errorf("SCAN_TICK_INTERVAL must be positive")
	}

	if c.Latency.FailureRate < 0 || c.Latency.FailureRate > 1 {
		return fmt.Errorf("SIMULATED_FAILURE_RATE must be between 0 and 1")
	}

	if c.Session.DBPath == "" {
		return fmt.Errorf("SESSION_DB_PATH is required")
	}

	return nil
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
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
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
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
