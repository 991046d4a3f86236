// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/labourdash/internal/modules/trends"
)

// Config holds application configuration
type Config struct {
	DataDir       string // Base directory for all databases (always absolute)
	LogLevel      string
	Port          int
	DevMode       bool
	Currency      string // ISO-4217 code used for narrative formatting
	DefaultTenant string // Used when requests carry no X-Tenant-ID header
	Cache         CacheConfig
	Backup        BackupConfig
	Maintenance   MaintenanceConfig
}

// CacheConfig controls the trends payload cache
type CacheConfig struct {
	TTL          time.Duration
	WarmSchedule string // Six-field cron expression; "off" disables warm-up
}

// BackupConfig controls database backups
type BackupConfig struct {
	Schedule   string // Six-field cron expression; "off" disables scheduled backups
	Dir        string
	Retain     int
	S3Bucket   string // Upload target; empty keeps backups local
	S3Prefix   string
	S3Endpoint string // S3-compatible endpoint override
	AWSRegion  string
}

// MaintenanceConfig controls the daily database maintenance job
type MaintenanceConfig struct {
	Schedule string
}

// S3Enabled reports whether backups are uploaded off-site
func (c BackupConfig) S3Enabled() bool {
	return c.S3Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("LABOUR_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	backupDir := getEnv("BACKUP_DIR", filepath.Join(absDataDir, "backups"))
	absBackupDir, err := filepath.Abs(backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backup directory path: %w", err)
	}

	cfg := &Config{
		DataDir:       absDataDir,
		Port:          getEnvAsInt("GO_PORT", 8001),
		DevMode:       getEnvAsBool("DEV_MODE", false),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Currency:      strings.ToUpper(getEnv("CURRENCY", "USD")),
		DefaultTenant: getEnv("DEFAULT_TENANT", "default"),
		Cache: CacheConfig{
			TTL:          time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 300)) * time.Second,
			WarmSchedule: getEnvSchedule("CACHE_WARM_SCHEDULE", "0 */15 * * * *"),
		},
		Backup: BackupConfig{
			Schedule:   getEnvSchedule("BACKUP_SCHEDULE", "0 0 3 * * *"),
			Dir:        absBackupDir,
			Retain:     getEnvAsInt("BACKUP_RETAIN", 7),
			S3Bucket:   getEnv("BACKUP_S3_BUCKET", ""),
			S3Prefix:   getEnv("BACKUP_S3_PREFIX", "labourdash"),
			S3Endpoint: getEnv("BACKUP_S3_ENDPOINT", ""),
			AWSRegion:  getEnv("AWS_REGION", "us-east-1"),
		},
		Maintenance: MaintenanceConfig{
			Schedule: getEnvSchedule("MAINTENANCE_SCHEDULE", "0 30 4 * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and well formed
func (c *Config) Validate() error {
	code, err := trends.ParseCurrency(c.Currency)
	if err != nil {
		return fmt.Errorf("invalid CURRENCY: %w", err)
	}
	c.Currency = code

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid GO_PORT: %d", c.Port)
	}
	if c.DefaultTenant == "" {
		return fmt.Errorf("DEFAULT_TENANT must not be empty")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive")
	}
	if c.Backup.Retain < 1 {
		return fmt.Errorf("BACKUP_RETAIN must be at least 1")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvSchedule returns a cron expression, or "" when the value is "off"
func getEnvSchedule(key, defaultValue string) string {
	value := strings.TrimSpace(getEnv(key, defaultValue))
	if strings.EqualFold(value, "off") {
		return ""
	}
	return value
}
