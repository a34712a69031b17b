package config

import (
	"reflect"
	"strings"

	"kiosk-sync/core/database"
	"kiosk-sync/core/logger"
	"kiosk-sync/core/remote"
	"kiosk-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Sync holds configuration for the reconciliation engine and export poller.
type Sync struct {
	// DocumentCategory is the fixed category of documents mirrored per
	// station.
	DocumentCategory string `mapstructure:"document_category" default:"Work Instruction"`
	// ExportPollSeconds is the delay between async export status polls.
	ExportPollSeconds int `mapstructure:"export_poll_seconds" default:"5"`
	// ExportPollAttempts is the poll budget before an export times out.
	ExportPollAttempts int `mapstructure:"export_poll_attempts" default:"20"`
	// ArchiveExports enables uploading downloaded export files to object
	// storage before scanning them.
	ArchiveExports bool `mapstructure:"archive_exports" default:"false"`
}

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Remote holds configuration for the MES API client.
	Remote remote.Config `mapstructure:"remote"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Sync holds configuration for the sync engine.
	Sync Sync `mapstructure:"sync"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. REMOTE_API_KEY -> remote.api_key)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
