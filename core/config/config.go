package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"deck-sync/core/database"
	"deck-sync/core/logger"
	"deck-sync/core/server"
	"deck-sync/core/storage"
	"deck-sync/feature/decks"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the record database.
	Database database.Config `mapstructure:"database"`
	// Sync holds the sources and the sync schedule.
	Sync decks.Config `mapstructure:"sync"`
}

// LoadConfig loads configuration from config.yaml, the .env file and environment variables.
// Environment variables take precedence over the file.
func LoadConfig(path string) (*Config, error) {
	envPath := ".env"
	if path != "." && path != "" {
		envPath = filepath.Join(path, ".env")
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Sources are a list, which only the config file can express
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the configuration and returns a descriptive error for the first problem.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("database.driver %q is not supported (mysql, sqlite)", c.Database.Driver)
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket must not be empty")
	}
	return c.Sync.Validate()
}

// SettingsLoader returns a loader that re-reads and validates the configuration at path.
// Coordinators call it at the start of every round so edits apply without a restart.
func SettingsLoader(path string) decks.SettingsLoader {
	return func() (*decks.Settings, error) {
		cfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg.Sync.Settings()
	}
}

// IntervalSource returns a source that re-reads the automatic sync period at path.
func IntervalSource(path string) decks.IntervalSource {
	return func() (time.Duration, error) {
		cfg, err := LoadConfig(path)
		if err != nil {
			return 0, err
		}
		if err := cfg.Sync.Validate(); err != nil {
			return 0, err
		}
		return cfg.Sync.Interval(), nil
	}
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		switch field.Type.Kind() {
		case reflect.Struct:
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		case reflect.Slice:
			// Lists come from the config file only
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
