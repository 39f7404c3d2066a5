package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Payment provider names.
const (
	ProviderRazorpay = "razorpay"
	ProviderSandbox  = "sandbox"
)

// Config is the application configuration, built once at startup and
// threaded to the components that need it. Nothing reads the process
// environment after this point.
type Config struct {
	Server   Server
	Database Database
	Auth     Auth
	Payment  Payment
}

// Server controls the HTTP listener.
type Server struct {
	Host            string
	Port            int
	CORSOrigins     []string
	RateLimitPerMin int
	ShutdownTimeout time.Duration
}

// Database selects the backing store.
type Database struct {
	Driver string // sqlite, postgres, mysql
	DSN    string // file path for sqlite, connection string otherwise
}

// Auth controls token issuance.
type Auth struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Payment selects and configures the checkout provider. The sandbox
// provider skips the gateway entirely and allows direct paid enrollment,
// which is what local development wants.
type Payment struct {
	Provider  string
	KeyID     string
	KeySecret string
}

// SetDefaults registers configuration defaults with viper. Called once
// before Load, from CLI initialization.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit_per_min", 300)
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("payment.provider", ProviderSandbox)
	v.SetDefault("payment.key_id", "")
	v.SetDefault("payment.key_secret", "")
}

// Load collapses viper's merged sources (flags > env > config file >
// defaults) into an immutable Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: Server{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			CORSOrigins:     v.GetStringSlice("server.cors_origins"),
			RateLimitPerMin: v.GetInt("server.rate_limit_per_min"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: Database{
			Driver: v.GetString("database.driver"),
			DSN:    v.GetString("database.dsn"),
		},
		Auth: Auth{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Payment: Payment{
			Provider:  v.GetString("payment.provider"),
			KeyID:     v.GetString("payment.key_id"),
			KeySecret: v.GetString("payment.key_secret"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the cross-field constraints the flat key reads can't.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	switch c.Payment.Provider {
	case ProviderSandbox:
	case ProviderRazorpay:
		if c.Payment.KeyID == "" || c.Payment.KeySecret == "" {
			return fmt.Errorf("payment.key_id and payment.key_secret are required for the razorpay provider")
		}
	default:
		return fmt.Errorf("unknown payment provider: %q", c.Payment.Provider)
	}
	return nil
}
