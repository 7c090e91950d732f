package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Klingon-tech/klingnet-wallet/internal/network"
	"github.com/Klingon-tech/klingnet-wallet/internal/storage"
)

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must not be empty")
	}
	if cfg.Network != network.Sepolia && cfg.Network != network.Amoy {
		return fmt.Errorf("network must be %q or %q", network.Amoy, network.Sepolia)
	}

	switch cfg.Storage.Backend {
	case storage.BackendBadger, storage.BackendSQLite, storage.BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be %q or %q", storage.BackendBadger, storage.BackendSQLite)
	}

	switch cfg.Auth.Mode {
	case AuthDevice, AuthWallet:
	default:
		return fmt.Errorf("auth.mode must be %q or %q", AuthDevice, AuthWallet)
	}

	if err := validateEndpoint("rpc.sepolia", cfg.RPC.Sepolia); err != nil {
		return err
	}
	if err := validateEndpoint("rpc.amoy", cfg.RPC.Amoy); err != nil {
		return err
	}
	if cfg.RPC.Timeout <= 0 {
		return fmt.Errorf("rpc.timeout must be positive")
	}
	if cfg.Tx.ConfirmTimeout < 0 {
		return fmt.Errorf("tx.confirm_timeout must not be negative")
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error", "disabled", "off", "":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, error or off")
	}
	return nil
}

func validateEndpoint(field, endpoint string) error {
	if endpoint == "" {
		return nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("%s must be an http(s) or ws(s) URL", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host", field)
	}
	return nil
}
