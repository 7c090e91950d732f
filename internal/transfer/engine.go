// Package transfer validates, signs and broadcasts native-asset transfers
// and tracks their confirmation.
package transfer

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	klog "github.com/Klingon-tech/klingnet-wallet/internal/log"
	"github.com/Klingon-tech/klingnet-wallet/internal/network"
	"github.com/Klingon-tech/klingnet-wallet/pkg/tx"
	ptypes "github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// Intent is a requested transfer as entered by the user.
type Intent struct {
	Recipient string
	Amount    string
	Network   string
}

// Result is handed to Config.OnSettled after every Transfer call.
// Receipt is nil when the transfer failed before broadcast.
type Result struct {
	Intent  Intent
	Sender  string
	Receipt *Receipt
	Err     error
}

// Confirmation is handed to Config.OnConfirmed when a transfer is mined.
type Confirmation struct {
	Network string
	Sender  common.Address
	Hash    common.Hash
}

// Config configures an Engine.
type Config struct {
	// ConfirmTimeout bounds the background wait for inclusion.
	// Zero waits indefinitely.
	ConfirmTimeout time.Duration

	// OnSettled runs synchronously before Transfer returns, on success and
	// on failure alike.
	OnSettled func(Result)

	// OnConfirmed runs in the background after successful inclusion.
	OnConfirmed func(Confirmation)
}

// Quote is the cost breakdown of a transfer that passed every check up to
// signing.
type Quote struct {
	Network   network.Network
	Sender    common.Address
	Recipient common.Address
	Balance   *big.Int
	Amount    *big.Int
	GasPrice  *big.Int
	Gas       uint64
	Fee       *big.Int
	Total     *big.Int
}

// Engine runs the transfer pipeline.
type Engine struct {
	networks network.Resolver
	cfg      Config
}

// NewEngine creates an engine resolving providers through networks.
func NewEngine(networks network.Resolver, cfg Config) *Engine {
	return &Engine{networks: networks, cfg: cfg}
}

// Transfer sends amount (decimal major units) from sender to recipient on
// the named network, signing with senderKey. Checks run in order:
// recipient, amount, network, balance, fee sufficiency. Nothing is signed
// or broadcast unless all pass. The returned receipt confirms in the
// background; a broadcast transaction is never resubmitted.
func (e *Engine) Transfer(ctx context.Context, senderKey, recipient, amount, networkName, sender string) (*Receipt, error) {
	intent := Intent{Recipient: recipient, Amount: amount, Network: networkName}
	rcpt, err := e.transfer(ctx, senderKey, intent, sender)
	if e.cfg.OnSettled != nil {
		e.cfg.OnSettled(Result{Intent: intent, Sender: sender, Receipt: rcpt, Err: err})
	}
	return rcpt, err
}

func (e *Engine) transfer(ctx context.Context, senderKey string, intent Intent, sender string) (*Receipt, error) {
	defer klog.Benchmark("transfer")()

	q, p, key, err := e.prepare(ctx, intent, sender, senderKey)
	if err != nil {
		lg := klog.WithNetwork(klog.Transfer, intent.Network)
		lg.Warn().Err(err).Msg("Transfer rejected")
		return nil, err
	}

	nonce, err := p.PendingNonceAt(ctx, q.Sender)
	if err != nil {
		return nil, &ProviderError{Step: StepNonce, Err: err}
	}
	chainID, err := p.ChainID(ctx)
	if err != nil {
		return nil, &ProviderError{Step: StepChainID, Err: err}
	}
	if chainID.Uint64() != q.Network.ChainID {
		return nil, fmt.Errorf("%w: got %s, want %d", ErrChainMismatch, chainID, q.Network.ChainID)
	}

	signed, err := tx.NewBuilder().
		SetNonce(nonce).
		SetRecipient(q.Recipient).
		SetValue(q.Amount).
		SetGasPrice(q.GasPrice).
		SetGas(q.Gas).
		Sign(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("sign transfer: %w", err)
	}

	if err := p.SendTransaction(ctx, signed); err != nil {
		return nil, &ProviderError{Step: StepSend, Err: err}
	}

	rcpt := newReceipt(signed.Hash())
	rcpt.Network = q.Network.Name
	rcpt.Sender = q.Sender
	rcpt.Nonce = nonce
	rcpt.Value = q.Amount
	rcpt.Fee = q.Fee

	lg := klog.WithNetwork(klog.Transfer, q.Network.Name)
	lg.Info().
		Str("tx", rcpt.Hash.Hex()).
		Str("to", q.Recipient.Hex()).
		Str("amount", ptypes.FormatAmount(q.Amount, q.Network.Decimals)).
		Uint64("nonce", nonce).
		Msg("Transfer broadcast")

	go e.confirm(p, signed, rcpt)
	return rcpt, nil
}

// Estimate runs every check Transfer performs before signing and returns
// the cost breakdown. It needs no key and broadcasts nothing.
func (e *Engine) Estimate(ctx context.Context, intent Intent, sender string) (Quote, error) {
	q, _, _, err := e.prepare(ctx, intent, sender, "")
	if err != nil {
		return Quote{}, err
	}
	return q, nil
}

// prepare runs the checks shared by Transfer and Estimate. senderKey is
// only parsed when non-empty.
func (e *Engine) prepare(ctx context.Context, intent Intent, sender, senderKey string) (Quote, network.Provider, *ecdsa.PrivateKey, error) {
	recipient, err := ptypes.ParseAddress(strings.TrimSpace(intent.Recipient))
	if err != nil {
		return Quote{}, nil, nil, fmt.Errorf("%w: %q", ErrInvalidRecipient, intent.Recipient)
	}
	amount, err := ptypes.ParseEther(intent.Amount)
	if err != nil {
		return Quote{}, nil, nil, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}

	from, err := ptypes.ParseAddress(sender)
	if err != nil {
		return Quote{}, nil, nil, fmt.Errorf("sender: %w", err)
	}
	var key *ecdsa.PrivateKey
	if senderKey != "" {
		key, err = tx.ParsePrivateKey(senderKey)
		if err != nil {
			return Quote{}, nil, nil, err
		}
		if tx.KeyAddress(key) != from {
			return Quote{}, nil, nil, ErrSenderMismatch
		}
	}

	n, p, err := e.networks.Resolve(ctx, intent.Network)
	if errors.Is(err, network.ErrUnsupportedNetwork) {
		return Quote{}, nil, nil, err
	}
	if err != nil {
		return Quote{}, nil, nil, &ProviderError{Step: StepConnect, Err: err}
	}

	balance, err := p.BalanceAt(ctx, from)
	if err != nil {
		return Quote{}, nil, nil, &ProviderError{Step: StepBalance, Err: err}
	}
	if amount.Cmp(balance) > 0 {
		return Quote{}, nil, nil, fmt.Errorf("%w: have %s %s, need %s %s", ErrInsufficientBalance,
			ptypes.FormatAmount(balance, n.Decimals), n.Symbol,
			ptypes.FormatAmount(amount, n.Decimals), n.Symbol)
	}

	gasPrice, err := p.SuggestGasPrice(ctx)
	if err != nil {
		return Quote{}, nil, nil, &ProviderError{Step: StepGasPrice, Err: err}
	}
	fee := tx.FeeCost(gasPrice, tx.TransferGas)
	total := tx.TotalCost(amount, fee)
	if balance.Cmp(total) < 0 {
		return Quote{}, nil, nil, fmt.Errorf("%w: have %s %s, need %s %s", ErrInsufficientBalanceForFees,
			ptypes.FormatAmount(balance, n.Decimals), n.Symbol,
			ptypes.FormatAmount(total, n.Decimals), n.Symbol)
	}

	return Quote{
		Network:   n,
		Sender:    from,
		Recipient: recipient,
		Balance:   balance,
		Amount:    amount,
		GasPrice:  gasPrice,
		Gas:       tx.TransferGas,
		Fee:       fee,
		Total:     total,
	}, p, key, nil
}

// confirm waits for inclusion and resolves rcpt. It never resubmits.
func (e *Engine) confirm(p network.Provider, signed *types.Transaction, rcpt *Receipt) {
	ctx := context.Background()
	if e.cfg.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.ConfirmTimeout)
		defer cancel()
	}

	mined, err := p.WaitMined(ctx, signed)
	switch {
	case err != nil:
		err = &ConfirmationError{Hash: rcpt.Hash, Err: err}
	case mined == nil:
		err = &ConfirmationError{Hash: rcpt.Hash, Err: errors.New("no receipt")}
	case mined.Status != types.ReceiptStatusSuccessful:
		err = &ConfirmationError{Hash: rcpt.Hash, Err: ErrReverted}
	}
	rcpt.resolve(mined, err)

	logger := klog.WithNetwork(klog.Transfer, rcpt.Network)
	if err != nil {
		logger.Error().Err(err).Str("tx", rcpt.Hash.Hex()).Msg("Transfer not confirmed")
		return
	}
	ev := logger.Info().Str("tx", rcpt.Hash.Hex())
	if mined.BlockNumber != nil {
		ev = ev.Uint64("block", mined.BlockNumber.Uint64())
	}
	ev.Msg("Transfer confirmed")
	if e.cfg.OnConfirmed != nil {
		e.cfg.OnConfirmed(Confirmation{Network: rcpt.Network, Sender: rcpt.Sender, Hash: rcpt.Hash})
	}
}
