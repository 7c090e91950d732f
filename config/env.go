package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of wallet environment variables.
const EnvPrefix = "KLINGWALLET"

// envVars lists the environment variables read into Config, each as
// KLINGWALLET_<NAME>. The Infura key also falls back to the bare names.
type envVars struct {
	Datadir        string
	Network        string
	StorageBackend string `split_words:"true"`
	AuthMode       string `split_words:"true"`
	RpcSepolia     string `split_words:"true"`
	RpcAmoy        string `split_words:"true"`
	RpcTimeout     string `split_words:"true"`
	ConfirmTimeout string `split_words:"true"`
	LogLevel       string `split_words:"true"`
	LogFile        string `split_words:"true"`
	LogJson        string `split_words:"true"`

	InfuraKey string `envconfig:"INFURA_API_KEY"`
	// Name used by the browser build of the wallet.
	ViteInfuraKey string `envconfig:"VITE_INFURA_API_KEY"`
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped and variables already set are kept.
func LoadDotEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// readEnv returns the config keys set in the environment.
func readEnv() (map[string]string, error) {
	var vars envVars
	if err := envconfig.Process(EnvPrefix, &vars); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	infura := vars.InfuraKey
	if infura == "" {
		infura = vars.ViteInfuraKey
	}

	values := make(map[string]string)
	for key, v := range map[string]string{
		"datadir":            vars.Datadir,
		"network":            vars.Network,
		"storage.backend":    vars.StorageBackend,
		"auth.mode":          vars.AuthMode,
		"rpc.sepolia":        vars.RpcSepolia,
		"rpc.amoy":           vars.RpcAmoy,
		"rpc.infura_key":     infura,
		"rpc.timeout":        vars.RpcTimeout,
		"tx.confirm_timeout": vars.ConfirmTimeout,
		"log.level":          vars.LogLevel,
		"log.file":           vars.LogFile,
		"log.json":           vars.LogJson,
	} {
		if v != "" {
			values[key] = v
		}
	}
	return values, nil
}

// ApplyEnv applies environment variables to cfg.
func ApplyEnv(cfg *Config) error {
	values, err := readEnv()
	if err != nil {
		return err
	}
	return ApplyFileConfig(cfg, values)
}
