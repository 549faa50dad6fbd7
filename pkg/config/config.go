package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// Report pipeline
	RedisURL        string
	ReportDir       string
	ReportJobTTL    time.Duration
	ReportRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("REPORT_DIR", "./reports")
	viper.SetDefault("REPORT_JOB_TTL", "4h")
	viper.SetDefault("REPORT_RATE_LIMIT", "30-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.RedisURL = viper.GetString("REDIS_URL")
	cfg.ReportDir = viper.GetString("REPORT_DIR")
	cfg.ReportRateLimit = viper.GetString("REPORT_RATE_LIMIT")

	ttlStr := viper.GetString("REPORT_JOB_TTL")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		ttl = 4 * time.Hour
		log.Printf("Warning: Invalid value for REPORT_JOB_TTL ('%s'). Defaulting to %s.\n", ttlStr, ttl.String())
	}
	cfg.ReportJobTTL = ttl

	return cfg, nil
}
