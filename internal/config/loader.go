package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment variable read by the loader
	EnvPrefix = "TP_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config *Config
	path   string
}

// NewLoader creates a new configuration loader reading the default config file
func NewLoader() *Loader {
	return &Loader{
		config: NewConfig(),
		path:   DefaultConfigPath(),
	}
}

// NewLoaderWithPath creates a loader reading the YAML file at path. An empty
// path skips the file.
func NewLoaderWithPath(path string) *Loader {
	return &Loader{
		config: NewConfig(),
		path:   path,
	}
}

// DefaultConfigPath returns ~/.config/tp/config.yaml
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tp", "config.yaml")
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the YAML config file, when present
// 3. Override with TP_* environment variables
// 4. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	k := koanf.New(".")

	if err := l.loadFile(k); err != nil {
		return nil, err
	}

	// TP_STORAGE_DIR_PERMISSIONS -> storage.dir_permissions
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.UnmarshalWithConf("", l.config, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

func (l *Loader) loadFile(k *koanf.Koanf) error {
	if l.path == "" {
		return nil
	}

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file %s exceeds %d bytes", l.path, maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", l.path, err)
	}
	return nil
}

// envKey maps an environment variable to a config key by splitting on the
// first underscore after the prefix only.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	StorageDir     *string
	StorageKey     *string
	StorageBackend *string

	CancelOnComplete *bool
	AuthState        *string

	DateFormat *string
	Color      *bool

	Timeout *time.Duration
	Verbose *bool

	LogLevel  *string
	LogFormat *string
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	if overrides.StorageDir != nil {
		config.Storage.Dir = *overrides.StorageDir
	}
	if overrides.StorageKey != nil {
		config.Storage.Key = *overrides.StorageKey
	}
	if overrides.StorageBackend != nil {
		config.Storage.Backend = *overrides.StorageBackend
	}

	if overrides.CancelOnComplete != nil {
		config.Reminders.CancelOnComplete = *overrides.CancelOnComplete
	}
	if overrides.AuthState != nil {
		config.Reminders.AuthState = *overrides.AuthState
	}

	if overrides.DateFormat != nil {
		config.Display.DateFormat = *overrides.DateFormat
	}
	if overrides.Color != nil {
		config.Display.Color = *overrides.Color
	}

	if overrides.Timeout != nil {
		config.Application.Timeout = *overrides.Timeout
	}
	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
		if *overrides.Verbose {
			config.Logging.Level = "debug"
		}
	}

	if overrides.LogLevel != nil {
		config.Logging.Level = *overrides.LogLevel
	}
	if overrides.LogFormat != nil {
		config.Logging.Format = *overrides.LogFormat
	}
}
