// Package config handles wallet configuration.
//
// Values are layered: built-in defaults, then the klingwallet.conf file,
// then .env files and the process environment, then command-line flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/Klingon-tech/klingnet-wallet/internal/network"
)

// AuthMode selects how wallet secrets are protected.
type AuthMode string

const (
	// AuthDevice protects every wallet with one device password.
	AuthDevice AuthMode = "device"
	// AuthWallet gives each wallet record its own password.
	AuthWallet AuthMode = "wallet"
)

// Config holds wallet runtime configuration.
type Config struct {
	// Core
	DataDir string `conf:"datadir"`
	Network string `conf:"network"`

	Storage StorageConfig
	Auth    AuthConfig
	RPC     RPCConfig
	Tx      TxConfig
	Log     LogConfig
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend string `conf:"storage.backend"` // badger, sqlite or memory
}

// AuthConfig holds password settings.
type AuthConfig struct {
	Mode AuthMode `conf:"auth.mode"`
}

// RPCConfig holds JSON-RPC endpoint settings.
type RPCConfig struct {
	Sepolia   string        `conf:"rpc.sepolia"`
	Amoy      string        `conf:"rpc.amoy"`
	InfuraKey string        `conf:"rpc.infura_key"`
	Timeout   time.Duration `conf:"rpc.timeout"`
}

// TxConfig holds transfer settings.
type TxConfig struct {
	ConfirmTimeout time.Duration `conf:"tx.confirm_timeout"` // 0 waits indefinitely
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.klingwallet
//	macOS:   ~/Library/Application Support/Klingwallet
//	Windows: %APPDATA%\Klingwallet
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".klingwallet"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Klingwallet")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Klingwallet")
		}
		return filepath.Join(home, "AppData", "Roaming", "Klingwallet")
	default:
		return filepath.Join(home, ".klingwallet")
	}
}

// StorageDir returns the directory handed to the storage backend.
func (c *Config) StorageDir() string {
	return c.DataDir
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "klingwallet.conf")
}

// EnvFile returns the data directory .env path.
func (c *Config) EnvFile() string {
	return filepath.Join(c.DataDir, ".env")
}

// SepoliaEndpoint returns rpc.sepolia, or the Infura URL built from the
// API key when no explicit endpoint is set.
func (c *Config) SepoliaEndpoint() string {
	if c.RPC.Sepolia != "" {
		return c.RPC.Sepolia
	}
	return network.SepoliaURL(c.RPC.InfuraKey)
}

// Networks returns the network registry entries with configured endpoints.
func (c *Config) Networks() []network.Network {
	return network.DefaultNetworks(c.SepoliaEndpoint(), c.RPC.Amoy)
}
