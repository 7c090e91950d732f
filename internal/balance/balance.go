// Package balance reads native-asset balances and keeps the latest one
// for display.
package balance

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	klog "github.com/Klingon-tech/klingnet-wallet/internal/log"
	"github.com/Klingon-tech/klingnet-wallet/internal/network"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// Unavailable is shown in place of a balance that could not be fetched.
const Unavailable = "unavailable"

// ErrFetch matches every *FetchError.
var ErrFetch = errors.New("balance fetch failed")

// FetchError reports a failed balance query.
type FetchError struct {
	Network string
	Address string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s balance of %s: %v", e.Network, e.Address, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFetch) match.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// Balance is the native balance of an account on one network.
type Balance struct {
	Address   common.Address
	Network   string
	Wei       *big.Int
	Formatted string
	Symbol    string
}

// String renders the balance as "<amount> <symbol>".
func (b Balance) String() string {
	return b.Formatted + " " + b.Symbol
}

// Oracle fetches balances through a network resolver.
type Oracle struct {
	networks network.Resolver
}

// NewOracle creates an oracle.
func NewOracle(networks network.Resolver) *Oracle {
	return &Oracle{networks: networks}
}

// Fetch returns the latest balance of address on the named network.
// Unknown networks return network.ErrUnsupportedNetwork; every other
// failure is a *FetchError.
func (o *Oracle) Fetch(ctx context.Context, address, networkName string) (Balance, error) {
	n, provider, err := o.networks.Resolve(ctx, networkName)
	if errors.Is(err, network.ErrUnsupportedNetwork) {
		return Balance{}, err
	}
	if err != nil {
		return Balance{}, &FetchError{Network: networkName, Address: address, Err: err}
	}
	addr, err := types.ParseAddress(address)
	if err != nil {
		return Balance{}, &FetchError{Network: networkName, Address: address, Err: err}
	}

	logger := klog.WithNetwork(klog.Balance, n.Name)
	wei, err := provider.BalanceAt(ctx, addr)
	if err != nil {
		logger.Warn().Err(err).Str("address", address).Msg("Balance fetch failed")
		return Balance{}, &FetchError{Network: networkName, Address: address, Err: err}
	}
	if wei == nil {
		wei = new(big.Int)
	}
	logger.Debug().Str("address", addr.Hex()).Str("wei", wei.String()).Msg("Balance fetched")
	return Balance{
		Address:   addr,
		Network:   n.Name,
		Wei:       wei,
		Formatted: types.FormatAmount(wei, n.Decimals),
		Symbol:    n.Symbol,
	}, nil
}

// Display renders a fetch result, substituting Unavailable on error.
func Display(b Balance, err error) string {
	if err != nil {
		return Unavailable
	}
	return b.String()
}
