package config

import (
	"fmt"
	"os"
)

// Load builds the configuration from defaults, the config file, .env files,
// the environment and f, in that order, and validates it.
//
// The data directory is resolved first (flag, then environment, then
// default) because the config file and data .env live inside it.
func Load(f *Flags) (*Config, error) {
	cfg := Default()

	// .env in the working directory may set KLINGWALLET_DATADIR.
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if dir := os.Getenv(EnvPrefix + "_DATADIR"); dir != "" {
		cfg.DataDir = dir
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	path := f.Config
	if path == "" {
		path = cfg.ConfigFile()
	}
	values, err := LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	delete(values, "datadir")
	if err := ApplyFileConfig(cfg, values); err != nil {
		return nil, err
	}

	if err := LoadDotEnv(cfg.EnvFile()); err != nil {
		return nil, err
	}
	dataDir := cfg.DataDir
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.DataDir = dataDir

	ApplyFlags(cfg, f)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
