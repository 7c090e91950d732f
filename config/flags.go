package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"
)

// ErrHelp is returned by ParseFlags when -h or --help was given.
var ErrHelp = flag.ErrHelp

// Flags holds parsed global command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	DataDir string
	Config  string
	Network string

	Storage  string
	AuthMode string

	// RPC
	RPCSepolia     string
	RPCAmoy        string
	RPCTimeout     time.Duration
	ConfirmTimeout time.Duration

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args: the command and its arguments.
	Args []string

	// Explicitly-set flags whose zero value is meaningful.
	SetLogJSON        bool
	SetConfirmTimeout bool
}

// ParseFlags parses global flags from args (without the program name).
// Parsing stops at the first non-flag argument, which starts Args.
func ParseFlags(args []string, output io.Writer) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("klingwallet-cli", flag.ContinueOnError)
	fs.SetOutput(output)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")

	// Core
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")
	fs.StringVar(&f.Network, "network", "", "Network (amoy or sepolia)")
	fs.StringVar(&f.Storage, "storage", "", "Storage backend (badger or sqlite)")
	fs.StringVar(&f.AuthMode, "auth-mode", "", "Password mode (device or wallet)")

	// RPC
	fs.StringVar(&f.RPCSepolia, "rpc-sepolia", "", "Sepolia JSON-RPC endpoint")
	fs.StringVar(&f.RPCAmoy, "rpc-amoy", "", "Amoy JSON-RPC endpoint")
	fs.DurationVar(&f.RPCTimeout, "rpc-timeout", 0, "Per-call RPC timeout")
	fs.DurationVar(&f.ConfirmTimeout, "confirm-timeout", 0, "Transfer confirmation timeout (0 = no limit)")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			f.Help = true
			return f, nil
		}
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.SetConfirmTimeout = isFlagSet(fs, "confirm-timeout")
	f.Args = fs.Args()
	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.Network != "" {
		cfg.Network = f.Network
	}
	if f.Storage != "" {
		cfg.Storage.Backend = f.Storage
	}
	if f.AuthMode != "" {
		cfg.Auth.Mode = AuthMode(f.AuthMode)
	}

	// RPC
	if f.RPCSepolia != "" {
		cfg.RPC.Sepolia = f.RPCSepolia
	}
	if f.RPCAmoy != "" {
		cfg.RPC.Amoy = f.RPCAmoy
	}
	if f.RPCTimeout != 0 {
		cfg.RPC.Timeout = f.RPCTimeout
	}
	if f.SetConfirmTimeout {
		cfg.Tx.ConfirmTimeout = f.ConfirmTimeout
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
