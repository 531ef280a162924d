package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	NATS      NATSConfig      `yaml:"nats"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Matching  MatchingConfig  `yaml:"matching"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port                   string   `yaml:"port"`
	AllowedOrigins         []string `yaml:"allowed_origins"`
	ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds"`
	AdminToken             string   `yaml:"admin_token"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SQLiteConfig contains SQLite settings. Path ":memory:" opens a private in-memory database.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig contains Redis settings used by the shared rate limiter.
// An empty Addr falls back to the in-process limiter.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NATSConfig contains event publishing settings. An empty URL disables publishing.
type NATSConfig struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// AuthConfig contains bearer token settings
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	Enabled         bool `yaml:"enabled"`
	SwipesPerMinute int  `yaml:"swipes_per_minute"`
}

// TaskTemplate describes one onboarding task seeded into a new deal room
type TaskTemplate struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
}

// MatchingConfig contains the thresholds and tunables of the matching engine
type MatchingConfig struct {
	BuyerYesMinLevel        int            `yaml:"buyer_yes_min_level"`
	SellerYesMinLevel       int            `yaml:"seller_yes_min_level"`
	FreshnessWindowDays     int            `yaml:"freshness_window_days"`
	CandidateBatchSize      int            `yaml:"candidate_batch_size"`
	PrefilterByState        bool           `yaml:"prefilter_by_state"`
	AverageSpeedMPH         float64        `yaml:"average_speed_mph"`
	DefaultAnchorMaxMinutes int            `yaml:"default_anchor_max_minutes"`
	MutualMatchScore        float64        `yaml:"mutual_match_score"`
	MutualMatchExplanation  string         `yaml:"mutual_match_explanation"`
	TaskDueDays             int            `yaml:"task_due_days"`
	OrphanRepairBatchSize   int            `yaml:"orphan_repair_batch_size"`
	BuyerTasks              []TaskTemplate `yaml:"buyer_tasks"`
	SellerTasks             []TaskTemplate `yaml:"seller_tasks"`
}

// SchedulerConfig contains cron settings for background jobs
type SchedulerConfig struct {
	FreshnessSweepEnabled bool   `yaml:"freshness_sweep_enabled"`
	FreshnessSweepSpec    string `yaml:"freshness_sweep_spec"`
	OrphanRepairEnabled   bool   `yaml:"orphan_repair_enabled"`
	OrphanRepairSpec      string `yaml:"orphan_repair_spec"`
	SwipeCleanupEnabled   bool   `yaml:"swipe_cleanup_enabled"`
	SwipeCleanupSpec      string `yaml:"swipe_cleanup_spec"`
}

// CleanupConfig contains archived swipe cleanup settings
type CleanupConfig struct {
	RetentionDays    int  `yaml:"retention_days"`
	MaxDeletionCount int  `yaml:"max_deletion_count"`
	DryRun           bool `yaml:"dry_run"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                   "8080",
			AllowedOrigins:         []string{"http://localhost:3000"},
			ShutdownTimeoutSeconds: 10,
		},
		Database: DatabaseConfig{
			Type: "postgres",
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "postgres",
				Database: "real_estate_matching",
				SSLMode:  "disable",
			},
			SQLite: SQLiteConfig{
				Path: "matching.db",
			},
		},
		NATS: NATSConfig{
			Name: "real-estate-matching",
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			SwipesPerMinute: 60,
		},
		Matching: DefaultMatchingConfig(),
		Scheduler: SchedulerConfig{
			FreshnessSweepEnabled: true,
			FreshnessSweepSpec:    "0 3 * * *",
			OrphanRepairEnabled:   true,
			OrphanRepairSpec:      "*/5 * * * *",
			SwipeCleanupEnabled:   false,
			SwipeCleanupSpec:      "30 4 * * *",
		},
		Cleanup: CleanupConfig{
			RetentionDays:    90,
			MaxDeletionCount: 1000,
			DryRun:           false,
		},
		Logging: LoggingConfig{
			Level:       "info",
			LogRequests: true,
		},
	}
}

// DefaultMatchingConfig returns the default matching thresholds and onboarding tasks
func DefaultMatchingConfig() MatchingConfig {
	return MatchingConfig{
		BuyerYesMinLevel:        3,
		SellerYesMinLevel:       2,
		FreshnessWindowDays:     7,
		CandidateBatchSize:      100,
		AverageSpeedMPH:         30,
		DefaultAnchorMaxMinutes: 60,
		MutualMatchScore:        0.8,
		MutualMatchExplanation:  "Mutual acceptance",
		TaskDueDays:             3,
		OrphanRepairBatchSize:   50,
		BuyerTasks: []TaskTemplate{
			{Title: "Confirm timeline", Description: "Share your preferred closing timeline", Category: "pre_offer"},
			{Title: "Upload pre-approval", Description: "Upload your pre-approval letter", Category: "financing"},
			{Title: "Request tour times", Description: "Request available tour times", Category: "pre_offer"},
		},
		SellerTasks: []TaskTemplate{
			{Title: "Confirm availability", Description: "Confirm your availability for tours", Category: "pre_offer"},
			{Title: "Respond to tour request", Description: "Respond to buyer tour requests", Category: "pre_offer"},
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks settings that would otherwise fail deep inside the matching engine
func (c *Config) Validate() error {
	m := c.Matching
	if m.BuyerYesMinLevel < 0 || m.SellerYesMinLevel < 0 {
		return fmt.Errorf("matching: verification thresholds must not be negative")
	}
	if m.CandidateBatchSize <= 0 {
		return fmt.Errorf("matching: candidate_batch_size must be positive, got %d", m.CandidateBatchSize)
	}
	if m.AverageSpeedMPH <= 0 {
		return fmt.Errorf("matching: average_speed_mph must be positive, got %v", m.AverageSpeedMPH)
	}
	if m.MutualMatchScore < 0 || m.MutualMatchScore > 1 {
		return fmt.Errorf("matching: mutual_match_score must be within [0, 1], got %v", m.MutualMatchScore)
	}
	if m.TaskDueDays < 0 {
		return fmt.Errorf("matching: task_due_days must not be negative, got %d", m.TaskDueDays)
	}
	if err := validateTasks("buyer_tasks", m.BuyerTasks); err != nil {
		return err
	}
	if err := validateTasks("seller_tasks", m.SellerTasks); err != nil {
		return err
	}
	if c.RateLimit.Enabled && c.RateLimit.SwipesPerMinute <= 0 {
		return fmt.Errorf("rate_limit: swipes_per_minute must be positive when enabled, got %d", c.RateLimit.SwipesPerMinute)
	}
	switch c.Database.Type {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("database: unsupported type %q", c.Database.Type)
	}
	return nil
}

// validateTasks requires at least one onboarding task per side, each with a title
func validateTasks(key string, tasks []TaskTemplate) error {
	if len(tasks) == 0 {
		return fmt.Errorf("matching: %s must list at least one task", key)
	}
	for i, t := range tasks {
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("matching: %s[%d] has no title", key, i)
		}
	}
	return nil
}

// GetFreshnessWindow returns the listing freshness window as a duration
func (c *MatchingConfig) GetFreshnessWindow() time.Duration {
	return time.Duration(c.FreshnessWindowDays) * 24 * time.Hour
}

// GetTaskDue returns how long after seeding an onboarding task falls due
func (c *MatchingConfig) GetTaskDue() time.Duration {
	return time.Duration(c.TaskDueDays) * 24 * time.Hour
}

// GetShutdownTimeout returns the graceful shutdown timeout as a duration
func (c *ServerConfig) GetShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}
