package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Extract  ExtractConfig
	Export   ExportConfig
	Log      LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // "sqlite" | "postgres"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ExtractConfig holds page-processing configuration
type ExtractConfig struct {
	PageWorkers    int
	FileWorkers    int
	QueueSize      int
	ProcessTimeout time.Duration
	MaxPages       int // 0 = no limit
}

// ExportConfig holds output configuration
type ExportConfig struct {
	Format string // "xlsx" | "json" | "yaml"
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string // "json" | "text"
}

// fileConfig mirrors Config for the optional YAML overlay. Empty values leave
// the environment-derived setting untouched.
type fileConfig struct {
	Database struct {
		Driver           string `yaml:"driver"`
		DSN              string `yaml:"dsn"`
		MaxConns         int32  `yaml:"max_conns"`
		MinConns         int32  `yaml:"min_conns"`
		MaxConnLifetime  string `yaml:"max_conn_lifetime"`
		MaxConnIdleTime  string `yaml:"max_conn_idle_time"`
		DialTimeout      string `yaml:"dial_timeout"`
		StatementTimeout string `yaml:"statement_timeout"`
	} `yaml:"database"`
	Extract struct {
		PageWorkers    int    `yaml:"page_workers"`
		FileWorkers    int    `yaml:"file_workers"`
		QueueSize      int    `yaml:"queue_size"`
		ProcessTimeout string `yaml:"process_timeout"`
		MaxPages       int    `yaml:"max_pages"`
	} `yaml:"extract"`
	Export struct {
		Format string `yaml:"format"`
	} `yaml:"export"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// LoadConfig loads configuration from .env, environment variables and,
// when INVOICE_CONFIG names a file, a YAML overlay.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, NewAppError("CONFIG_ERROR", "load .env", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "sqlite"),
			DSN:              getEnv("DB_URL", "file:invoices.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Extract: ExtractConfig{
			PageWorkers:    getEnvAsInt("PAGE_WORKERS", 4),
			FileWorkers:    getEnvAsInt("FILE_WORKERS", 4),
			QueueSize:      getEnvAsInt("QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 2*time.Minute),
			MaxPages:       getEnvAsInt("MAX_PAGES", 0),
		},
		Export: ExportConfig{
			Format: getEnv("EXPORT_FORMAT", "xlsx"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if path := os.Getenv("INVOICE_CONFIG"); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// ApplyFile overlays the YAML file at path onto c.
func (c *Config) ApplyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return NewAppError("CONFIG_ERROR", "read config file", err)
	}
	return c.ApplyYAML(b)
}

// ApplyYAML overlays a YAML document onto c.
func (c *Config) ApplyYAML(b []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return NewAppError("CONFIG_ERROR", "parse config file", err)
	}

	setString(&c.Database.Driver, fc.Database.Driver)
	setString(&c.Database.DSN, fc.Database.DSN)
	if fc.Database.MaxConns > 0 {
		c.Database.MaxConns = fc.Database.MaxConns
	}
	if fc.Database.MinConns > 0 {
		c.Database.MinConns = fc.Database.MinConns
	}
	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"database.max_conn_lifetime", fc.Database.MaxConnLifetime, &c.Database.MaxConnLifetime},
		{"database.max_conn_idle_time", fc.Database.MaxConnIdleTime, &c.Database.MaxConnIdleTime},
		{"database.dial_timeout", fc.Database.DialTimeout, &c.Database.DialTimeout},
		{"database.statement_timeout", fc.Database.StatementTimeout, &c.Database.StatementTimeout},
		{"extract.process_timeout", fc.Extract.ProcessTimeout, &c.Extract.ProcessTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return NewAppError("CONFIG_ERROR", fmt.Sprintf("%s: invalid duration %q", d.name, d.raw), ErrInvalidInput)
		}
		*d.dst = v
	}

	if fc.Extract.PageWorkers > 0 {
		c.Extract.PageWorkers = fc.Extract.PageWorkers
	}
	if fc.Extract.FileWorkers > 0 {
		c.Extract.FileWorkers = fc.Extract.FileWorkers
	}
	if fc.Extract.QueueSize > 0 {
		c.Extract.QueueSize = fc.Extract.QueueSize
	}
	if fc.Extract.MaxPages > 0 {
		c.Extract.MaxPages = fc.Extract.MaxPages
	}
	setString(&c.Export.Format, fc.Export.Format)
	setString(&c.Log.Level, fc.Log.Level)
	setString(&c.Log.Format, fc.Log.Format)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.DSN == "" {
			return NewAppError("CONFIG_ERROR", "DB_URL is required for postgres", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("DB_DRIVER %q is not one of sqlite|postgres", c.Database.Driver), ErrInvalidInput)
	}
	if c.Extract.PageWorkers <= 0 || c.Extract.FileWorkers <= 0 {
		return NewAppError("CONFIG_ERROR", "PAGE_WORKERS and FILE_WORKERS must be positive", ErrInvalidInput)
	}
	switch c.Export.Format {
	case "xlsx", "json", "yaml":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("EXPORT_FORMAT %q is not one of xlsx|json|yaml", c.Export.Format), ErrInvalidInput)
	}
	return nil
}
