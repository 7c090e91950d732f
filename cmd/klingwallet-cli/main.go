// klingwallet-cli is a command-line wallet for EVM test networks.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Klingon-tech/klingnet-wallet/config"
	"github.com/Klingon-tech/klingnet-wallet/internal/auth"
	"github.com/Klingon-tech/klingnet-wallet/internal/balance"
	klog "github.com/Klingon-tech/klingnet-wallet/internal/log"
	"github.com/Klingon-tech/klingnet-wallet/internal/network"
	"github.com/Klingon-tech/klingnet-wallet/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-wallet/internal/storage"
	"github.com/Klingon-tech/klingnet-wallet/internal/transfer"
	"github.com/Klingon-tech/klingnet-wallet/internal/wallet"
	"github.com/Klingon-tech/klingnet-wallet/pkg/tx"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"

	"golang.org/x/term"
)

// Version is set at build time.
var Version = "dev"

// app holds the components shared by every command.
type app struct {
	cfg      *config.Config
	db       storage.DB
	keys     *wallet.KeyManager
	wallets  *wallet.Store
	session  *auth.Session
	guard    *auth.RecordGuard
	networks *network.Registry
	oracle   *balance.Oracle
}

func main() {
	flags, err := config.ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fatal("%v", err)
	}
	if flags.Version {
		fmt.Printf("klingwallet-cli %s\n", Version)
		return
	}
	if flags.Help || len(flags.Args) == 0 {
		usage()
		if flags.Help {
			return
		}
		os.Exit(1)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fatal("config: %v", err)
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}

	cmd := flags.Args[0]
	cmdArgs := flags.Args[1:]

	// Commands that need no wallet database.
	switch cmd {
	case "help":
		usage()
		return
	case "networks":
		cmdNetworks(cfg)
		return
	case "init":
		cmdInit(cfg)
		return
	}

	a, err := openApp(cfg)
	if err != nil {
		fatal("%v", err)
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "setup":
		a.cmdSetup()
	case "unlock":
		a.cmdUnlock()
	case "create":
		a.cmdCreate(cmdArgs)
	case "import":
		a.cmdImport(cmdArgs)
	case "list":
		a.cmdList()
	case "show":
		a.cmdShow(cmdArgs)
	case "delete":
		a.cmdDelete(cmdArgs)
	case "balance":
		a.cmdBalance(ctx, cmdArgs)
	case "send":
		a.cmdSend(ctx, cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		a.close()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: klingwallet-cli [global flags] <command> [flags]

Global flags:
  --datadir <path>          Data directory (default: ~/.klingwallet)
  --config <file>           Config file (default: <datadir>/klingwallet.conf)
  --network <net>           amoy (default) or sepolia
  --storage <backend>       badger (default) or sqlite
  --auth-mode <mode>        device (default) or wallet
  --rpc-sepolia <url>       Sepolia endpoint (default: Infura, needs INFURA_API_KEY)
  --rpc-amoy <url>          Amoy endpoint
  --rpc-timeout <dur>       Per-call RPC timeout (default: 10s)
  --confirm-timeout <dur>   Confirmation wait limit (default: none)
  --log-level <level>       debug, info, warn (default), error, off
  --log-file <path>         Also write logs to a file
  --log-json                JSON log output

Commands:
  init                            Write a default config file
  networks                        List supported networks
  setup                           Set the device password (first run)
  unlock                          Check the device password
  create                          Create a wallet from a new 12-word phrase
  import [--mnemonic "..."]       Import a wallet from a 12-word phrase
  list                            List wallets
  show --wallet <addr> [--secrets]
                                  Show a wallet, optionally with its secrets
  delete --wallet <addr>          Remove a wallet
  balance [--wallet <addr>] [<addr>]
                                  Show the native balance on --network
  send --wallet <addr> --to <addr> --amount <amt> [--dry-run] [--no-wait]
                                  Send native currency on --network
`)
}

func openApp(cfg *config.Config) (*app, error) {
	if cfg.Storage.Backend != storage.BackendMemory {
		if err := os.MkdirAll(cfg.StorageDir(), 0700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := storage.Open(cfg.Storage.Backend, cfg.StorageDir())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	session, err := auth.Open(storage.NewPrefixDB(db, []byte("auth/")))
	if err != nil {
		db.Close()
		return nil, err
	}
	networks := network.NewRegistry(cfg.Networks(), rpcclient.Dialer(cfg.RPC.Timeout))
	return &app{
		cfg:      cfg,
		db:       db,
		keys:     wallet.NewKeyManager(nil),
		wallets:  wallet.NewStore(storage.NewPrefixDB(db, []byte("wallet/"))),
		session:  session,
		guard:    auth.NewRecordGuard(nil),
		networks: networks,
		oracle:   balance.NewOracle(networks),
	}, nil
}

func (a *app) close() {
	a.networks.Close()
	if err := a.db.Close(); err != nil {
		klog.Storage.Warn().Err(err).Msg("Close storage")
	}
}

// ── init / networks ─────────────────────────────────────────────────────

func cmdInit(cfg *config.Config) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		fatal("create data dir: %v", err)
	}
	path := cfg.ConfigFile()
	if _, err := os.Stat(path); err == nil {
		fatal("config file already exists: %s", path)
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		fatal("write config: %v", err)
	}
	fmt.Printf("Config written: %s\n", path)
}

func cmdNetworks(cfg *config.Config) {
	reg := network.NewRegistry(cfg.Networks(), nil)
	for _, n := range reg.Networks() {
		marker := " "
		if n.Name == cfg.Network {
			marker = "*"
		}
		endpoint := n.RPCURL
		if endpoint == "" {
			endpoint = "(not configured: set INFURA_API_KEY)"
		}
		fmt.Printf("%s %-8s %-28s chain %-9d %s  %s\n", marker, n.Name, n.Title, n.ChainID, n.Symbol, endpoint)
	}
}

// ── password gate ───────────────────────────────────────────────────────

func (a *app) cmdSetup() {
	if a.cfg.Auth.Mode == config.AuthWallet {
		fatal("auth.mode is %q: passwords are set per wallet on create and import", config.AuthWallet)
	}
	if a.session.State() != auth.AwaitingSetup {
		fatal("%v", auth.ErrAlreadySetup)
	}
	password := readNewPassword("Set device password: ")
	if err := a.session.Setup(password); err != nil {
		fatal("%v", err)
	}
	fmt.Println("Device password set.")
}

func (a *app) cmdUnlock() {
	if a.cfg.Auth.Mode == config.AuthWallet {
		fatal("auth.mode is %q: use show --secrets to check a wallet password", config.AuthWallet)
	}
	a.unlockDevice()
	fmt.Printf("Session: %s\n", a.session.State())
}

// unlockDevice prompts for the device password in device mode.
func (a *app) unlockDevice() {
	if a.cfg.Auth.Mode != config.AuthDevice {
		return
	}
	if a.session.State() == auth.AwaitingSetup {
		fatal("no device password yet; run: klingwallet-cli setup")
	}
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if err := a.session.Verify(string(password)); err != nil {
		fatal("%v", err)
	}
	if err := a.session.RequireUnlocked(); err != nil {
		fatal("%v", err)
	}
}

// unlockWallet authorizes access to rec's secrets under either mode.
func (a *app) unlockWallet(rec wallet.Record) {
	if a.cfg.Auth.Mode == config.AuthDevice {
		a.unlockDevice()
		return
	}
	var password []byte
	if rec.Protected() {
		var err error
		password, err = readPassword("Wallet password: ")
		if err != nil {
			fatal("read password: %v", err)
		}
	}
	if err := a.guard.VerifyRecord(rec, string(password)); err != nil {
		fatal("%v", err)
	}
}

// ── wallets ─────────────────────────────────────────────────────────────

func (a *app) cmdCreate(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	fs.Parse(args)

	a.unlockDevice()
	rec, err := a.keys.Generate()
	if err != nil {
		fatal("generate wallet: %v", err)
	}
	rec = a.protect(rec)
	if err := a.wallets.Add(rec); err != nil {
		fatal("%v", err)
	}

	fmt.Println("Seed phrase (write this down!):")
	fmt.Printf("  %s\n\n", rec.MnemonicPhrase)
	fmt.Printf("Wallet created: %s\n", rec.Address)
}

func (a *app) cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	mnemonic := fs.String("mnemonic", "", "12-word seed phrase (prompted when omitted)")
	fs.Parse(args)

	a.unlockDevice()
	phrase := *mnemonic
	if phrase == "" {
		p, err := readPassword("Seed phrase: ")
		if err != nil {
			fatal("read seed phrase: %v", err)
		}
		phrase = string(p)
	}

	rec, err := a.keys.Import(phrase)
	var wce *wallet.WordCountError
	switch {
	case errors.As(err, &wce):
		fatal("seed phrase must be exactly %d words. You entered %d words.", wallet.MnemonicWords, wce.Count)
	case errors.Is(err, wallet.ErrInvalidMnemonic):
		fatal("invalid seed phrase: check the words and their order")
	case err != nil:
		fatal("import wallet: %v", err)
	}

	if _, err := a.wallets.Get(rec.Address); err == nil {
		fatal("wallet already exists: %s", rec.Address)
	}
	rec = a.protect(rec)
	if err := a.wallets.Add(rec); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Wallet imported: %s\n", rec.Address)
}

// protect sets a per-wallet password in wallet auth mode.
func (a *app) protect(rec wallet.Record) wallet.Record {
	if a.cfg.Auth.Mode != config.AuthWallet {
		return rec
	}
	password := readNewPassword("Set wallet password: ")
	protected, err := a.guard.ProtectRecord(rec, password)
	if err != nil {
		fatal("%v", err)
	}
	return protected
}

func (a *app) cmdList() {
	a.unlockDevice()
	records, err := a.wallets.List()
	if err != nil {
		fatal("%v", err)
	}
	if len(records) == 0 {
		fmt.Println("No wallets. Create one with: klingwallet-cli create")
		return
	}
	for i, r := range records {
		lock := ""
		if r.Protected() {
			lock = " (password)"
		}
		fmt.Printf("  %d. %s  %s%s\n", i+1, types.ShortAddress(r.Address), r.Address, lock)
	}
}

func (a *app) cmdShow(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	addr := fs.String("wallet", "", "Wallet address")
	secrets := fs.Bool("secrets", false, "Print the seed phrase and private key")
	fs.Parse(args)

	if *addr == "" {
		fatal("Usage: klingwallet-cli show --wallet <addr> [--secrets]")
	}
	rec := a.loadWallet(*addr)
	fmt.Printf("Address: %s\n", types.ChecksumAddress(rec.Address))
	if !*secrets {
		return
	}
	a.unlockWallet(rec)
	fmt.Printf("Seed phrase: %s\n", rec.MnemonicPhrase)
	fmt.Printf("Private key: %s\n", rec.PrivateKey)
}

func (a *app) cmdDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	addr := fs.String("wallet", "", "Wallet address")
	fs.Parse(args)

	if *addr == "" {
		fatal("Usage: klingwallet-cli delete --wallet <addr>")
	}
	rec := a.loadWallet(*addr)
	a.unlockWallet(rec)
	if err := a.wallets.Remove(rec.Address); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Wallet removed: %s\n", types.ChecksumAddress(rec.Address))
}

func (a *app) loadWallet(addr string) wallet.Record {
	rec, err := a.wallets.Get(addr)
	if err != nil {
		fatal("%v", err)
	}
	return rec
}

// ── balance ─────────────────────────────────────────────────────────────

func (a *app) cmdBalance(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	addr := fs.String("wallet", "", "Wallet address")
	fs.Parse(args)

	if *addr == "" && fs.NArg() > 0 {
		*addr = fs.Arg(0)
	}
	if *addr == "" {
		fatal("Usage: klingwallet-cli balance [--wallet] <addr>")
	}

	b, err := a.oracle.Fetch(ctx, *addr, a.cfg.Network)
	if errors.Is(err, network.ErrUnsupportedNetwork) {
		fatal("%v", err)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	fmt.Printf("Address: %s\n", types.ChecksumAddress(*addr))
	fmt.Printf("Balance (%s): %s\n", a.cfg.Network, balance.Display(b, err))
}

// ── send ────────────────────────────────────────────────────────────────

func (a *app) cmdSend(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	from := fs.String("wallet", "", "Sender wallet address")
	to := fs.String("to", "", "Recipient address")
	amount := fs.String("amount", "", "Amount in native units (e.g. 0.05)")
	dryRun := fs.Bool("dry-run", false, "Check balance and fees without sending")
	noWait := fs.Bool("no-wait", false, "Return after broadcast without waiting for confirmation")
	fs.Parse(args)

	if *from == "" || *to == "" || *amount == "" {
		fatal("Usage: klingwallet-cli send --wallet <addr> --to <addr> --amount <amt>")
	}
	rec := a.loadWallet(*from)
	intent := transfer.Intent{Recipient: *to, Amount: *amount, Network: a.cfg.Network}

	tracker := balance.NewTracker(a.oracle)
	refreshed := make(chan struct{})
	engine := transfer.NewEngine(a.networks, transfer.Config{
		ConfirmTimeout: a.cfg.Tx.ConfirmTimeout,
		OnSettled: func(r transfer.Result) {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "Transfer failed: %s\n", transferMessage(r.Err))
			}
			st, err := tracker.Refresh(ctx, balance.Trigger{Address: r.Sender, Network: r.Intent.Network})
			if !errors.Is(err, balance.ErrSuperseded) {
				fmt.Printf("Balance: %s\n", st.Display())
			}
		},
		OnConfirmed: func(c transfer.Confirmation) {
			defer close(refreshed)
			st, err := tracker.Refresh(context.Background(), balance.Trigger{
				Address: c.Sender.Hex(),
				Network: c.Network,
				TxHash:  c.Hash,
			})
			if !errors.Is(err, balance.ErrSuperseded) {
				fmt.Printf("New balance: %s\n", st.Display())
			}
		},
	})

	if *dryRun {
		q, err := engine.Estimate(ctx, intent, rec.Address)
		if err != nil {
			fatal("%s", transferMessage(err))
		}
		dec := q.Network.Decimals
		fmt.Printf("Network:   %s (chain %d)\n", q.Network.Title, q.Network.ChainID)
		fmt.Printf("From:      %s\n", q.Sender.Hex())
		fmt.Printf("To:        %s\n", q.Recipient.Hex())
		fmt.Printf("Amount:    %s %s\n", types.FormatAmount(q.Amount, dec), q.Network.Symbol)
		fmt.Printf("Fee:       %s %s (%d gas)\n", types.FormatAmount(q.Fee, dec), q.Network.Symbol, q.Gas)
		fmt.Printf("Total:     %s %s\n", types.FormatAmount(q.Total, dec), q.Network.Symbol)
		fmt.Printf("Balance:   %s %s\n", types.FormatAmount(q.Balance, dec), q.Network.Symbol)
		fmt.Printf("Max:       %s %s\n", types.FormatAmount(tx.MaxSendable(q.Balance, q.GasPrice), dec), q.Network.Symbol)
		return
	}

	a.unlockWallet(rec)
	rcpt, err := engine.Transfer(ctx, rec.PrivateKey, intent.Recipient, intent.Amount, intent.Network, rec.Address)
	if err != nil {
		a.close()
		os.Exit(1)
	}
	fmt.Printf("Submitted: %s\n", rcpt.Hash.Hex())
	if n, err := a.networks.Lookup(rcpt.Network); err == nil && n.TxURL(rcpt.Hash) != "" {
		fmt.Printf("Explorer:  %s\n", n.TxURL(rcpt.Hash))
	}
	if *noWait {
		return
	}

	fmt.Println("Waiting for confirmation (Ctrl-C to stop waiting)...")
	if err := rcpt.Wait(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("Stopped waiting; the transaction remains submitted.")
			return
		}
		fatal("%v", err)
	}
	fmt.Println("Confirmed.")
	// OnConfirmed runs after the receipt resolves.
	select {
	case <-refreshed:
	case <-ctx.Done():
	case <-time.After(refreshTimeout):
	}
}

// refreshTimeout bounds the wait for the post-confirmation balance.
const refreshTimeout = 10 * time.Second

// transferMessage renders transfer errors for the user.
func transferMessage(err error) string {
	switch {
	case errors.Is(err, transfer.ErrInvalidRecipient):
		return "invalid recipient address"
	case errors.Is(err, transfer.ErrInvalidAmount):
		return "invalid amount: enter a positive number"
	case errors.Is(err, transfer.ErrInsufficientBalanceForFees):
		return "insufficient balance for gas fees (" + err.Error() + ")"
	case errors.Is(err, transfer.ErrInsufficientBalance):
		return "insufficient balance (" + err.Error() + ")"
	default:
		return err.Error()
	}
}

// ── Password helpers ────────────────────────────────────────────────────

// readPassword reads a line without echo. When stdin is not a terminal
// the line is read as-is so scripts can pipe input.
func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		line, err := stdin.ReadString('\n')
		if err != nil && line == "" {
			return nil, err
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

var stdin = bufio.NewReader(os.Stdin)

// readNewPassword prompts twice and checks the strength.
func readNewPassword(prompt string) string {
	password, err := readPassword(prompt)
	if err != nil {
		fatal("read password: %v", err)
	}
	if err := auth.CheckStrength(string(password)); err != nil {
		fatal("%v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}
	return string(password)
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
