package cli

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/viper"

	"github.com/coursedesk/coursedesk/internal/config"
	"github.com/coursedesk/coursedesk/internal/payment"
	"github.com/coursedesk/coursedesk/internal/store"
)

// loadConfig collapses viper's merged sources into a validated Config.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// openStore opens the configured database and runs migrations.
func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store (%s): %w", cfg.Database.Driver, err)
	}
	return st, nil
}

// newProvider builds the checkout provider named in the configuration.
func newProvider(cfg *config.Config) payment.Provider {
	if cfg.Payment.Provider == config.ProviderRazorpay {
		return payment.NewRazorpay(cfg.Payment.KeyID, cfg.Payment.KeySecret)
	}
	return payment.NewSandbox()
}

// ensureJWTSecret returns the configured JWT secret, generating an
// ephemeral one when none is set. Generated secrets do not survive a
// restart, so issued tokens die with the process.
func ensureJWTSecret(cfg *config.Config) (string, bool) {
	if cfg.Auth.JWTSecret != "" {
		return cfg.Auth.JWTSecret, false
	}
	buf := make([]byte, 32)
	rand.Read(buf)
	return hex.EncodeToString(buf), true
}
