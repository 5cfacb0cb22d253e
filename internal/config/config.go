// Package config defines and loads application configuration.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch" validate:"required"`
	Handshake HandshakeConfig `mapstructure:"handshake" validate:"required"`
	Safety    SafetyConfig    `mapstructure:"safety" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// Backend selects the storage implementation: "postgres" for production,
// "memory" for local development without a database.
type DatabaseConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=postgres memory"`
	URL     string `mapstructure:"url" validate:"required_if=Backend postgres,omitempty,url"`
}

// AuthConfig contains token-validation settings. Token issuance and session
// management are handled by an external collaborator; this service only
// validates bearer tokens.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// DispatchConfig contains offer-dispatch settings.
type DispatchConfig struct {
	// OfferTTLSeconds is how long an inbox offer stays acceptable.
	OfferTTLSeconds int `mapstructure:"offer_ttl_seconds" validate:"required,gt=0"`

	// MaxOpenOffers caps how many providers receive concurrent offers for
	// one booking in a dispatch round.
	MaxOpenOffers int `mapstructure:"max_open_offers" validate:"required,gt=0"`

	// SweepIntervalSeconds is how often the background sweep expires
	// overdue open offers.
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds" validate:"required,gt=0"`
}

// HandshakeConfig contains trust-handshake settings.
type HandshakeConfig struct {
	// PINLength is the number of digits in the verification PIN.
	PINLength int `mapstructure:"pin_length" validate:"required,gte=4,lte=10"`

	// MaxAttempts is how many failed verifications are tolerated before
	// the handshake locks.
	MaxAttempts int `mapstructure:"max_attempts" validate:"required,gt=0"`
}

// SafetyConfig contains safety-escalation settings.
type SafetyConfig struct {
	// ShareTokenTTLHours is the lifetime of a trip-share token.
	ShareTokenTTLHours int `mapstructure:"share_token_ttl_hours" validate:"required,gt=0"`

	// EmergencyNumber is the fixed local emergency number included in
	// every SOS fan-out.
	EmergencyNumber string `mapstructure:"emergency_number" validate:"required"`
}
