// Package network names the EVM networks the wallet can talk to and hands
// out RPC providers for them.
package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Network names.
const (
	Sepolia = "sepolia"
	Amoy    = "amoy"

	// Default is the network used when none is selected.
	Default = Amoy
)

// Public endpoints.
const (
	AmoyRPC       = "https://rpc-amoy.polygon.technology"
	infuraSepolia = "https://sepolia.infura.io/v3/"
)

// Registry errors.
var (
	ErrUnsupportedNetwork = errors.New("unsupported network")
	ErrNoEndpoint         = errors.New("no RPC endpoint configured")
)

// Network describes one EVM chain.
type Network struct {
	Name     string
	Title    string
	ChainID  uint64
	Symbol   string
	Decimals int32
	RPCURL   string
	Explorer string
}

// TxURL returns the block explorer link for a transaction hash.
func (n Network) TxURL(hash common.Hash) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/tx/" + hash.Hex()
}

// SepoliaURL builds the Infura Sepolia endpoint for an API key.
// It returns "" when the key is empty.
func SepoliaURL(infuraKey string) string {
	if infuraKey == "" {
		return ""
	}
	return infuraSepolia + infuraKey
}

// DefaultNetworks returns the built-in networks. sepoliaURL may be empty,
// in which case Sepolia is listed but cannot be dialed.
func DefaultNetworks(sepoliaURL, amoyURL string) []Network {
	if amoyURL == "" {
		amoyURL = AmoyRPC
	}
	return []Network{
		{
			Name:     Sepolia,
			Title:    "Ethereum (Sepolia Testnet)",
			ChainID:  11155111,
			Symbol:   "ETH",
			Decimals: 18,
			RPCURL:   sepoliaURL,
			Explorer: "https://sepolia.etherscan.io",
		},
		{
			Name:     Amoy,
			Title:    "Polygon (Amoy Testnet)",
			ChainID:  80002,
			Symbol:   "POL",
			Decimals: 18,
			RPCURL:   amoyURL,
			Explorer: "https://amoy.polygonscan.com",
		},
	}
}

// Provider is the RPC capability the balance oracle and the transfer
// engine need from a network.
type Provider interface {
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Dialer opens a provider for a network.
type Dialer func(ctx context.Context, n Network) (Provider, error)

// Resolver maps a network name to its description and provider.
type Resolver interface {
	Resolve(ctx context.Context, name string) (Network, Provider, error)
}

// Registry is a Resolver over a fixed set of networks. Providers are dialed
// lazily and reused.
type Registry struct {
	networks map[string]Network
	dial     Dialer

	mu        sync.Mutex
	providers map[string]Provider
}

// NewRegistry creates a registry for nets using dial to open providers.
func NewRegistry(nets []Network, dial Dialer) *Registry {
	r := &Registry{
		networks:  make(map[string]Network, len(nets)),
		dial:      dial,
		providers: make(map[string]Provider),
	}
	for _, n := range nets {
		r.networks[n.Name] = n
	}
	return r
}

// Lookup returns the network with the given name.
func (r *Registry) Lookup(name string) (Network, error) {
	n, ok := r.networks[name]
	if !ok {
		return Network{}, fmt.Errorf("%w: %q", ErrUnsupportedNetwork, name)
	}
	return n, nil
}

// Networks returns all networks sorted by name.
func (r *Registry) Networks() []Network {
	out := make([]Network, 0, len(r.networks))
	for _, n := range r.networks {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Resolve returns the network and a provider for it.
func (r *Registry) Resolve(ctx context.Context, name string) (Network, Provider, error) {
	n, err := r.Lookup(name)
	if err != nil {
		return Network{}, nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[name]; ok {
		return n, p, nil
	}
	if n.RPCURL == "" {
		return Network{}, nil, fmt.Errorf("%w for %s", ErrNoEndpoint, name)
	}
	p, err := r.dial(ctx, n)
	if err != nil {
		return Network{}, nil, fmt.Errorf("dial %s: %w", name, err)
	}
	r.providers[name] = p
	return n, p, nil
}

// Close closes every dialed provider that supports closing.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, p := range r.providers {
		if c, ok := p.(io.Closer); ok {
			c.Close()
		}
		delete(r.providers, name)
	}
}
