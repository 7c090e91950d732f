package config

import (
	"time"

	"github.com/Klingon-tech/klingnet-wallet/internal/network"
	"github.com/Klingon-tech/klingnet-wallet/internal/storage"
)

// Default returns the default wallet configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Network: network.Default,
		Storage: StorageConfig{
			Backend: storage.BackendBadger,
		},
		Auth: AuthConfig{
			Mode: AuthDevice,
		},
		RPC: RPCConfig{
			Amoy:    network.AmoyRPC,
			Timeout: 10 * time.Second,
		},
		Tx: TxConfig{
			ConfirmTimeout: 0,
		},
		Log: LogConfig{
			Level: "warn",
			JSON:  false,
		},
	}
}
