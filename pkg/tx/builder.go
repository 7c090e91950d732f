// Package tx builds and signs native-asset value transfers.
package tx

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Builder constructs a legacy (gas price) value transfer.
type Builder struct {
	nonce    uint64
	to       *common.Address
	value    *big.Int
	gas      uint64
	gasPrice *big.Int
}

// NewBuilder creates a builder for a plain transfer using TransferGas.
func NewBuilder() *Builder {
	return &Builder{gas: TransferGas, value: new(big.Int), gasPrice: new(big.Int)}
}

// SetNonce sets the sender account nonce.
func (b *Builder) SetNonce(nonce uint64) *Builder {
	b.nonce = nonce
	return b
}

// SetRecipient sets the destination address.
func (b *Builder) SetRecipient(to common.Address) *Builder {
	b.to = &to
	return b
}

// SetValue sets the amount transferred, in wei.
func (b *Builder) SetValue(value *big.Int) *Builder {
	b.value = new(big.Int).Set(value)
	return b
}

// SetGasPrice sets the fee rate, in wei per gas.
func (b *Builder) SetGasPrice(gasPrice *big.Int) *Builder {
	b.gasPrice = new(big.Int).Set(gasPrice)
	return b
}

// SetGas overrides the gas allowance.
func (b *Builder) SetGas(gas uint64) *Builder {
	b.gas = gas
	return b
}

// Build validates the fields and returns the unsigned transaction.
func (b *Builder) Build() (*types.Transaction, error) {
	if err := validate(b); err != nil {
		return nil, err
	}
	return types.NewTx(&types.LegacyTx{
		Nonce:    b.nonce,
		To:       b.to,
		Value:    new(big.Int).Set(b.value),
		Gas:      b.gas,
		GasPrice: new(big.Int).Set(b.gasPrice),
	}), nil
}

// Sign builds the transaction and signs it with EIP-155 replay protection
// for chainID.
func (b *Builder) Sign(key *ecdsa.PrivateKey, chainID *big.Int) (*types.Transaction, error) {
	unsigned, err := b.Build()
	if err != nil {
		return nil, err
	}
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, fmt.Errorf("sign tx: invalid chain id %v", chainID)
	}
	signed, err := types.SignTx(unsigned, types.NewEIP155Signer(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}
	return signed, nil
}

// Sender recovers the signing address of a signed transaction.
func Sender(signed *types.Transaction, chainID *big.Int) (common.Address, error) {
	from, err := types.Sender(types.NewEIP155Signer(chainID), signed)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover sender: %w", err)
	}
	return from, nil
}
