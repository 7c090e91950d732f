package transfer

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Klingon-tech/klingnet-wallet/internal/network"
)

// Transfer errors.
var (
	ErrInvalidRecipient           = errors.New("invalid recipient address")
	ErrInvalidAmount              = errors.New("invalid amount")
	ErrUnsupportedNetwork         = network.ErrUnsupportedNetwork
	ErrInsufficientBalance        = errors.New("insufficient balance")
	ErrInsufficientBalanceForFees = errors.New("insufficient balance for gas fees")
	ErrSenderMismatch             = errors.New("private key does not control sender address")
	ErrChainMismatch              = errors.New("provider chain id does not match network")
	ErrProvider                   = errors.New("provider error")
	ErrConfirmation               = errors.New("transaction confirmation failed")
	ErrReverted                   = errors.New("transaction reverted")
)

// Provider steps reported in ProviderError.
const (
	StepConnect  = "connect"
	StepBalance  = "balance"
	StepGasPrice = "gas price"
	StepNonce    = "nonce"
	StepChainID  = "chain id"
	StepSend     = "send"
)

// ProviderError reports an RPC failure at one pipeline step.
type ProviderError struct {
	Step string
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Step, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrProvider) match.
func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// ConfirmationError reports a broadcast transaction that failed to confirm.
type ConfirmationError struct {
	Hash common.Hash
	Err  error
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("confirm %s: %v", e.Hash.Hex(), e.Err)
}

func (e *ConfirmationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrConfirmation) match.
func (e *ConfirmationError) Is(target error) bool { return target == ErrConfirmation }
