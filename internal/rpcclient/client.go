// Package rpcclient provides the Ethereum JSON-RPC provider used for
// balance queries and transaction submission.
package rpcclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	klog "github.com/Klingon-tech/klingnet-wallet/internal/log"
	"github.com/Klingon-tech/klingnet-wallet/internal/network"
)

// Defaults.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultPollInterval = 2 * time.Second

	// MaxReceiptFailures is how many consecutive receipt lookups may fail
	// with something other than "not found" before WaitMined gives up.
	MaxReceiptFailures = 10
)

// ErrReceiptUnavailable is returned by WaitMined when the node keeps
// failing receipt lookups.
var ErrReceiptUnavailable = errors.New("receipt unavailable")

// Client is an Ethereum JSON-RPC client implementing network.Provider.
// Every call is bounded by the client timeout.
type Client struct {
	endpoint string
	eth      *ethclient.Client
	timeout  time.Duration
	poll     time.Duration
}

// RPCError is returned when the server responds with an error.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// NewWithTimeout creates a new RPC client with a custom per-call timeout.
func NewWithTimeout(ctx context.Context, endpoint string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rc, err := rpc.DialOptions(ctx, endpoint, rpc.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	return &Client{
		endpoint: endpoint,
		eth:      ethclient.NewClient(rc),
		timeout:  timeout,
		poll:     DefaultPollInterval,
	}, nil
}

// Dialer returns a network.Dialer that opens clients with timeout.
func Dialer(timeout time.Duration) network.Dialer {
	return func(ctx context.Context, n network.Network) (network.Provider, error) {
		c, err := NewWithTimeout(ctx, n.RPCURL, timeout)
		if err != nil {
			return nil, err
		}
		klog.RPC.Debug().Str("network", n.Name).Msg("Provider dialed")
		return c, nil
	}
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	c.eth.Close()
	return nil
}

// BalanceAt returns the latest balance of account in wei.
func (c *Client) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	bal, err := c.eth.BalanceAt(ctx, account, nil)
	return bal, c.wrap("eth_getBalance", err)
}

// SuggestGasPrice returns the node's legacy gas price suggestion.
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	price, err := c.eth.SuggestGasPrice(ctx)
	return price, c.wrap("eth_gasPrice", err)
}

// PendingNonceAt returns the next nonce for account including pending txs.
func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	nonce, err := c.eth.PendingNonceAt(ctx, account)
	return nonce, c.wrap("eth_getTransactionCount", err)
}

// ChainID returns the chain ID reported by the node.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	id, err := c.eth.ChainID(ctx)
	return id, c.wrap("eth_chainId", err)
}

// SendTransaction broadcasts a signed transaction.
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	err := c.eth.SendTransaction(ctx, tx)
	if err == nil {
		klog.RPC.Debug().Str("tx", tx.Hash().Hex()).Msg("Transaction sent")
	}
	return c.wrap("eth_sendRawTransaction", err)
}

// WaitMined polls for the receipt of tx until it is included or ctx ends.
// Each poll uses the call timeout. A pending transaction is polled until
// ctx ends; MaxReceiptFailures consecutive lookup errors end the wait with
// ErrReceiptUnavailable.
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	hash := tx.Hash()
	failures := 0
	for {
		receipt, err := c.receipt(ctx, hash)
		switch {
		case err == nil:
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
			failures = 0
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			failures++
			klog.RPC.Debug().Err(err).Str("tx", hash.Hex()).Int("failures", failures).Msg("Receipt retrieval failed")
			if failures >= MaxReceiptFailures {
				return nil, fmt.Errorf("%w after %d attempts: %w", ErrReceiptUnavailable, failures, err)
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	r, err := c.eth.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, err
	}
	return r, c.wrap("eth_getTransactionReceipt", err)
}

// wrap converts server-side errors into *RPCError and tags the method.
func (c *Client) wrap(method string, err error) error {
	if err == nil {
		return nil
	}
	var re rpc.Error
	if errors.As(err, &re) {
		return fmt.Errorf("%s: %w", method, &RPCError{Code: re.ErrorCode(), Message: re.Error()})
	}
	return fmt.Errorf("%s: %w", method, err)
}
