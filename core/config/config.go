package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"purchase-manager/core/cache"
	"purchase-manager/core/database"
	"purchase-manager/core/kvstore"
	"purchase-manager/core/logger"
	"purchase-manager/core/server"
	"purchase-manager/core/storage"
	"purchase-manager/core/verifier"
	"purchase-manager/feature/catalog"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application, one section per concern.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the journal database.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the object storage holding the catalog.
	Storage storage.Config `mapstructure:"storage"`
	// Redis holds configuration for the optional Redis balance backend.
	Redis cache.Config `mapstructure:"redis"`
	// Store selects where the consumable balance is persisted.
	Store kvstore.Config `mapstructure:"store"`
	// Catalog describes the offered products.
	Catalog catalog.Config `mapstructure:"catalog"`
	// Verifier holds the key material for signed transactions.
	Verifier verifier.Config `mapstructure:"verifier"`
}

// LoadConfig loads configuration from the environment, overlaid with the .env
// file found in path.
func LoadConfig(path string) (*Config, error) {
	envPath := filepath.Join(path, ".env")

	// A missing .env is fine; production passes plain environment variables.
	_ = godotenv.Overload(envPath)

	v := viper.New()
	bindValues(v, Config{}, "")

	// SERVER_PORT -> server.port
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if !config.Store.IsValidBackend() {
		return nil, fmt.Errorf("unsupported store backend: %s", config.Store.Backend)
	}

	return &config, nil
}

// bindValues registers every mapstructure key with its default tag so that
// AutomaticEnv can override it.
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

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Empty defaults are registered too, otherwise the key is invisible to AutomaticEnv.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
