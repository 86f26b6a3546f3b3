package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Fees      FeesConfig      `yaml:"fees"`
	Storage   StorageConfig   `yaml:"storage"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig selects the storage backend. Driver "memory" keeps
// everything in process and ignores the connection fields.
type DatabaseConfig struct {
	Driver      string `yaml:"driver"` // "postgres" or "memory"
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Database    string `yaml:"database"`
	SSLMode     string `yaml:"ssl_mode"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// FeesConfig holds the pricing knobs used when a caller supplies no rate.
// Amounts are decimal strings in YAML, e.g. "25.00".
type FeesConfig struct {
	LateFeeRatePercent         decimal.Decimal `yaml:"late_fee_rate_percent"`
	FallbackDailyRate          decimal.Decimal `yaml:"fallback_daily_rate"`
	DefaultCleaningFee         decimal.Decimal `yaml:"default_cleaning_fee"`
	MaintenanceDamageThreshold decimal.Decimal `yaml:"maintenance_damage_threshold"`
}

// StorageConfig contains inspection photo storage settings
type StorageConfig struct {
	Type             string `yaml:"type"` // "local"
	Dir              string `yaml:"dir"`
	BaseURL          string `yaml:"base_url"`
	URLExpiryMinutes int    `yaml:"url_expiry_minutes"`
	SigningSecret    string `yaml:"signing_secret"` // HMAC key for upload links
}

// SchedulerConfig contains cron schedule settings (6 fields, seconds first)
type SchedulerConfig struct {
	ProjectOverdueReturns string `yaml:"project_overdue_returns"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.overrideWithEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() error {
	strs := map[string]*string{
		"SERVER_HOST":          &c.Server.Host,
		"DB_DRIVER":            &c.Database.Driver,
		"DB_HOST":              &c.Database.Host,
		"DB_USER":              &c.Database.User,
		"DB_PASSWORD":          &c.Database.Password,
		"DB_NAME":              &c.Database.Database,
		"DB_SSL_MODE":          &c.Database.SSLMode,
		"LOG_LEVEL":            &c.Log.Level,
		"LOG_FORMAT":           &c.Log.Format,
		"PHOTO_DIR":            &c.Storage.Dir,
		"PHOTO_BASE_URL":       &c.Storage.BaseURL,
		"PHOTO_SIGNING_SECRET": &c.Storage.SigningSecret,
		"CRON_PROJECT_OVERDUE": &c.Scheduler.ProjectOverdueReturns,
	}
	for key, dst := range strs {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}

	ints := map[string]*int{
		"SERVER_PORT": &c.Server.Port,
		"DB_PORT":     &c.Database.Port,
	}
	for key, dst := range ints {
		if val := os.Getenv(key); val != "" {
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	decimals := map[string]*decimal.Decimal{
		"LATE_FEE_RATE_PERCENT":        &c.Fees.LateFeeRatePercent,
		"FALLBACK_DAILY_RATE":          &c.Fees.FallbackDailyRate,
		"DEFAULT_CLEANING_FEE":         &c.Fees.DefaultCleaningFee,
		"MAINTENANCE_DAMAGE_THRESHOLD": &c.Fees.MaintenanceDamageThreshold,
	}
	for key, dst := range decimals {
		if val := os.Getenv(key); val != "" {
			d, err := decimal.NewFromString(val)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}

	if val := os.Getenv("DB_AUTO_MIGRATE"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("DB_AUTO_MIGRATE: %w", err)
		}
		c.Database.AutoMigrate = b
	}
	return nil
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("unknown database driver: %q", c.Database.Driver)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Fee defaults
	if c.Fees.LateFeeRatePercent.IsZero() {
		c.Fees.LateFeeRatePercent = decimal.NewFromInt(10)
	}
	if c.Fees.FallbackDailyRate.IsZero() {
		c.Fees.FallbackDailyRate = decimal.RequireFromString("5.00")
	}
	if c.Fees.DefaultCleaningFee.IsZero() {
		c.Fees.DefaultCleaningFee = decimal.RequireFromString("25.00")
	}
	for name, d := range map[string]decimal.Decimal{
		"late_fee_rate_percent":        c.Fees.LateFeeRatePercent,
		"fallback_daily_rate":          c.Fees.FallbackDailyRate,
		"default_cleaning_fee":         c.Fees.DefaultCleaningFee,
		"maintenance_damage_threshold": c.Fees.MaintenanceDamageThreshold,
	} {
		if d.IsNegative() {
			return fmt.Errorf("fees.%s cannot be negative", name)
		}
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	if c.Storage.Type != "local" {
		return fmt.Errorf("unsupported storage type: %q", c.Storage.Type)
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "./uploads"
	}
	if c.Storage.BaseURL == "" {
		c.Storage.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	if c.Storage.URLExpiryMinutes <= 0 {
		c.Storage.URLExpiryMinutes = 15
	}

	// Scheduler defaults
	if c.Scheduler.ProjectOverdueReturns == "" {
		c.Scheduler.ProjectOverdueReturns = "0 0 1 * * *" // 1 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// URLExpiry is the lifetime of generated photo links.
func (s StorageConfig) URLExpiry() time.Duration {
	return time.Duration(s.URLExpiryMinutes) * time.Minute
}
