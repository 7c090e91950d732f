package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Klingon-tech/klingnet-wallet/internal/network"
)

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func clearWalletEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"KLINGWALLET_DATADIR", "KLINGWALLET_NETWORK", "KLINGWALLET_STORAGE_BACKEND",
		"KLINGWALLET_AUTH_MODE", "KLINGWALLET_RPC_SEPOLIA", "KLINGWALLET_RPC_AMOY",
		"KLINGWALLET_RPC_TIMEOUT", "KLINGWALLET_CONFIRM_TIMEOUT", "KLINGWALLET_LOG_LEVEL",
		"KLINGWALLET_LOG_FILE", "KLINGWALLET_LOG_JSON", "KLINGWALLET_INFURA_API_KEY",
		"INFURA_API_KEY", "VITE_INFURA_API_KEY", "KLINGWALLET_VITE_INFURA_API_KEY",
	} {
		unsetEnv(t, k)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate(Default()) = %v", err)
	}
	if cfg.Network != network.Amoy || cfg.Auth.Mode != AuthDevice || cfg.RPC.Amoy != network.AmoyRPC {
		t.Errorf("Default() = %+v", cfg)
	}
	if cfg.SepoliaEndpoint() != "" {
		t.Errorf("SepoliaEndpoint() without key = %q", cfg.SepoliaEndpoint())
	}
}

func TestSepoliaEndpoint(t *testing.T) {
	cfg := Default()
	cfg.RPC.InfuraKey = "k123"
	if got := cfg.SepoliaEndpoint(); got != "https://sepolia.infura.io/v3/k123" {
		t.Errorf("SepoliaEndpoint() = %q", got)
	}
	cfg.RPC.Sepolia = "https://rpc.sepolia.org"
	if got := cfg.SepoliaEndpoint(); got != "https://rpc.sepolia.org" {
		t.Errorf("SepoliaEndpoint() = %q", got)
	}
	nets := cfg.Networks()
	if len(nets) != 2 {
		t.Fatalf("Networks() = %v", nets)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "klingwallet.conf")
	writeFile(t, path, `
# comment
network = sepolia
rpc.timeout = "5s"
log.json = yes
unknown.key = ignored
`)
	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	cfg := Default()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig() error: %v", err)
	}
	if cfg.Network != network.Sepolia || cfg.RPC.Timeout != 5*time.Second || !cfg.Log.JSON {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "nope.conf"))
	if err != nil || len(values) != 0 {
		t.Errorf("LoadFile(missing) = %v, %v", values, err)
	}
}

func TestLoadFile_BadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.conf")
	writeFile(t, path, "network amoy\n")
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() should reject a line without '='")
	}
}

func TestApplyFileConfig_BadDuration(t *testing.T) {
	err := ApplyFileConfig(Default(), map[string]string{"tx.confirm_timeout": "soon"})
	if err == nil || !strings.Contains(err.Error(), "tx.confirm_timeout") {
		t.Errorf("ApplyFileConfig() error = %v", err)
	}
}

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "klingwallet.conf")
	if err := WriteDefaultConfig(path); err != nil {
		t.Fatalf("WriteDefaultConfig() error: %v", err)
	}
	values, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := Default()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatal(err)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default file does not validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"sqlite", func(c *Config) { c.Storage.Backend = "sqlite" }, true},
		{"wallet auth", func(c *Config) { c.Auth.Mode = AuthWallet }, true},
		{"unknown network", func(c *Config) { c.Network = "mainnet" }, false},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, false},
		{"unknown auth", func(c *Config) { c.Auth.Mode = "none" }, false},
		{"bad rpc scheme", func(c *Config) { c.RPC.Amoy = "ftp://x" }, false},
		{"rpc without host", func(c *Config) { c.RPC.Sepolia = "https://" }, false},
		{"zero rpc timeout", func(c *Config) { c.RPC.Timeout = 0 }, false},
		{"negative confirm", func(c *Config) { c.Tx.ConfirmTimeout = -time.Second }, false},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"empty datadir", func(c *Config) { c.DataDir = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := Validate(cfg); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
	if Validate(nil) == nil {
		t.Error("Validate(nil) should fail")
	}
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags([]string{
		"--network", "sepolia", "--datadir=/tmp/w", "--confirm-timeout", "0",
		"--log-json", "send", "--to", "0xabc",
	}, io.Discard)
	if err != nil {
		t.Fatalf("ParseFlags() error: %v", err)
	}
	if f.Network != "sepolia" || f.DataDir != "/tmp/w" || !f.SetConfirmTimeout || !f.SetLogJSON {
		t.Errorf("flags = %+v", f)
	}
	if len(f.Args) != 3 || f.Args[0] != "send" {
		t.Errorf("Args = %v", f.Args)
	}

	cfg := Default()
	cfg.Tx.ConfirmTimeout = time.Minute
	ApplyFlags(cfg, f)
	if cfg.Network != "sepolia" || cfg.Tx.ConfirmTimeout != 0 || !cfg.Log.JSON {
		t.Errorf("ApplyFlags() cfg = %+v", cfg)
	}
}

func TestParseFlags_HelpAndErrors(t *testing.T) {
	f, err := ParseFlags([]string{"-h"}, io.Discard)
	if err != nil || !f.Help {
		t.Errorf("ParseFlags(-h) = %+v, %v", f, err)
	}
	if _, err := ParseFlags([]string{"--bogus"}, io.Discard); err == nil {
		t.Error("ParseFlags(--bogus) should fail")
	}
}

func TestApplyEnv(t *testing.T) {
	clearWalletEnv(t)
	t.Setenv("KLINGWALLET_NETWORK", "sepolia")
	t.Setenv("KLINGWALLET_RPC_TIMEOUT", "3s")
	t.Setenv("INFURA_API_KEY", "bare-key")

	cfg := Default()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}
	if cfg.Network != network.Sepolia || cfg.RPC.Timeout != 3*time.Second || cfg.RPC.InfuraKey != "bare-key" {
		t.Errorf("cfg = %+v", cfg.RPC)
	}
}

func TestApplyEnv_IgnoresUnprefixed(t *testing.T) {
	clearWalletEnv(t)
	t.Setenv("NETWORK", "sepolia")
	t.Setenv("LOG_LEVEL", "debug")
	cfg := Default()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Network != network.Amoy || cfg.Log.Level != "warn" {
		t.Errorf("unprefixed variables leaked into config: %+v", cfg)
	}
}

func TestApplyEnv_LegacyInfuraName(t *testing.T) {
	clearWalletEnv(t)
	t.Setenv("VITE_INFURA_API_KEY", "vite-key")
	cfg := Default()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.SepoliaEndpoint() != "https://sepolia.infura.io/v3/vite-key" {
		t.Errorf("SepoliaEndpoint() = %q", cfg.SepoliaEndpoint())
	}
}

func TestLoad_Layering(t *testing.T) {
	clearWalletEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "klingwallet.conf"), `
network = sepolia
log.level = info
rpc.timeout = 7s
storage.backend = sqlite
datadir = /somewhere/else
`)
	writeFile(t, filepath.Join(dir, ".env"), "KLINGWALLET_LOG_LEVEL=debug\nINFURA_API_KEY=from-dotenv\n")

	f, err := ParseFlags([]string{"--datadir", dir, "--network", "amoy", "list"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
	if cfg.Network != network.Amoy {
		t.Errorf("Network = %q, flag should win", cfg.Network)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, env should beat file", cfg.Log.Level)
	}
	if cfg.RPC.Timeout != 7*time.Second || cfg.Storage.Backend != "sqlite" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.RPC.InfuraKey != "from-dotenv" {
		t.Errorf("InfuraKey = %q", cfg.RPC.InfuraKey)
	}
}

func TestLoad_InvalidRejected(t *testing.T) {
	clearWalletEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "klingwallet.conf"), "auth.mode = nobody\n")
	f, _ := ParseFlags([]string{"--datadir", dir}, io.Discard)
	if _, err := Load(f); err == nil {
		t.Error("Load() should reject invalid auth.mode")
	}
}
