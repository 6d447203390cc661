package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Storage backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds all configuration options for the task planner
type Config struct {
	Storage     StorageConfig     `koanf:"storage"`
	Reminders   RemindersConfig   `koanf:"reminders"`
	Validation  ValidationConfig  `koanf:"validation"`
	Display     DisplayConfig     `koanf:"display"`
	Application ApplicationConfig `koanf:"application"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// StorageConfig holds blob storage configuration
type StorageConfig struct {
	Dir            string `koanf:"dir"`
	Key            string `koanf:"key"`
	Backend        string `koanf:"backend"`
	DirPermissions uint32 `koanf:"dir_permissions"`
}

// RemindersConfig holds reminder policy configuration
type RemindersConfig struct {
	CancelOnComplete bool `koanf:"cancel_on_complete"`
	// AuthState is the starting authorization of the local notification
	// center used by `tp watch`
	AuthState string `koanf:"auth_state"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	TitleMinLength       int `koanf:"title_min_length"`
	TitleMaxLength       int `koanf:"title_max_length"`
	DescriptionMaxLength int `koanf:"description_max_length"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	DateFormat string `koanf:"date_format"`
	Color      bool   `koanf:"color"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `koanf:"timeout"`
	Verbose bool          `koanf:"verbose"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Storage: StorageConfig{
			Dir:            filepath.Join(homeDir, ".tp"),
			Key:            "TodoList",
			Backend:        BackendFile,
			DirPermissions: 0700,
		},
		Reminders: RemindersConfig{
			CancelOnComplete: false,
			AuthState:        "undetermined",
		},
		Validation: ValidationConfig{
			TitleMinLength:       1,
			TitleMaxLength:       255,
			DescriptionMaxLength: 4096,
		},
		Display: DisplayConfig{
			DateFormat: "Jan 2, 2006 3:04 PM",
			Color:      true,
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			Verbose: false,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// GetDatabasePath returns the full path to the sqlite database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Storage.Dir, "tp.db")
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	if c.Storage.Dir == "" {
		return &ConfigError{Field: "storage.dir", Message: "storage directory cannot be empty"}
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return &ConfigError{Field: "storage.key", Message: "storage key cannot be empty"}
	}
	if c.Storage.Backend != BackendFile && c.Storage.Backend != BackendSQLite {
		return &ConfigError{Field: "storage.backend", Message: "storage backend must be file or sqlite"}
	}
	if c.Storage.DirPermissions == 0 || c.Storage.DirPermissions > 0777 {
		return &ConfigError{Field: "storage.dir_permissions", Message: "directory permissions must be between 0001 and 0777"}
	}

	switch c.Reminders.AuthState {
	case "undetermined", "authorized", "provisional", "denied":
	default:
		return &ConfigError{Field: "reminders.auth_state", Message: "authorization state must be undetermined, authorized, provisional or denied"}
	}

	if c.Validation.TitleMinLength < 1 {
		return &ConfigError{Field: "validation.title_min_length", Message: "title minimum length must be at least 1"}
	}
	if c.Validation.TitleMaxLength < c.Validation.TitleMinLength {
		return &ConfigError{Field: "validation.title_max_length", Message: "title maximum length must be greater than minimum length"}
	}
	if c.Validation.DescriptionMaxLength < 0 {
		return &ConfigError{Field: "validation.description_max_length", Message: "description maximum length cannot be negative"}
	}

	if c.Display.DateFormat == "" {
		return &ConfigError{Field: "display.date_format", Message: "date format cannot be empty"}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return &ConfigError{Field: "logging.format", Message: "log format must be json or console"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
