package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// LoadFile loads wallet configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key = value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a config value by key.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "datadir":
		cfg.DataDir = value
	case "network":
		cfg.Network = strings.ToLower(value)

	// Storage
	case "storage.backend":
		cfg.Storage.Backend = strings.ToLower(value)

	// Auth
	case "auth.mode":
		cfg.Auth.Mode = AuthMode(strings.ToLower(value))

	// RPC
	case "rpc.sepolia":
		cfg.RPC.Sepolia = value
	case "rpc.amoy":
		cfg.RPC.Amoy = value
	case "rpc.infura_key":
		cfg.RPC.InfuraKey = value
	case "rpc.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		cfg.RPC.Timeout = d

	// Transfers
	case "tx.confirm_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		cfg.Tx.ConfirmTimeout = d

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a default wallet configuration file.
func WriteDefaultConfig(path string) error {
	content := `# Klingnet Wallet Configuration
#
# Environment variables (KLINGWALLET_<KEY>, e.g. KLINGWALLET_NETWORK) and
# command-line flags override values in this file.

# Default network: amoy or sepolia
network = amoy

# Data directory (default: ~/.klingwallet)
# datadir = ~/.klingwallet

# ============================================================================
# Storage
# ============================================================================

# Backend: badger (default) or sqlite
storage.backend = badger

# ============================================================================
# Passwords
# ============================================================================

# device: one password for all wallets (default)
# wallet: a password per wallet
auth.mode = device

# ============================================================================
# RPC Endpoints
# ============================================================================

rpc.amoy = https://rpc-amoy.polygon.technology
# rpc.sepolia = https://sepolia.infura.io/v3/<key>
# Used to build the Sepolia endpoint when rpc.sepolia is unset.
# Prefer the INFURA_API_KEY environment variable.
# rpc.infura_key =
rpc.timeout = 10s

# ============================================================================
# Transfers
# ============================================================================

# How long to wait for a transfer to be mined (0 = no limit)
tx.confirm_timeout = 0s

# ============================================================================
# Logging
# ============================================================================

log.level = warn
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0600)
}
