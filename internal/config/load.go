package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables use the
// PAWTROL_ prefix with underscores for nesting (e.g. PAWTROL_SERVER_PORT)
// and take precedence over file values. Returns a populated Config or an
// error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PAWTROL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults cover it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the documented defaults for every setting that has one.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.backend", "postgres")

	v.SetDefault("dispatch.offer_ttl_seconds", 300)
	v.SetDefault("dispatch.max_open_offers", 5)
	v.SetDefault("dispatch.sweep_interval_seconds", 30)

	v.SetDefault("handshake.pin_length", 6)
	v.SetDefault("handshake.max_attempts", 5)

	v.SetDefault("safety.share_token_ttl_hours", 24)
	v.SetDefault("safety.emergency_number", "123")
}
