package wallet

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tyler-smith/go-bip32"
)

// BIP-44 derivation path constants.
// Full path: m/44'/60'/account'/change/index
const (
	// PurposeBIP44 is the BIP-44 purpose field (hardened).
	PurposeBIP44 = bip32.FirstHardenedChild + 44

	// CoinTypeEthereum is the SLIP-44 coin type shared by EVM chains (hardened).
	CoinTypeEthereum = bip32.FirstHardenedChild + 60

	// ChangeExternal is for receiving addresses.
	ChangeExternal = 0
)

// HDKey represents a hierarchical deterministic key (BIP-32).
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey creates a master HD key from a 64-byte seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return &HDKey{key: master}, nil
}

// DeriveChild derives a child key at the given index.
// For hardened derivation, add bip32.FirstHardenedChild to the index.
func (k *HDKey) DeriveChild(index uint32) (*HDKey, error) {
	child, err := k.key.NewChildKey(index)
	if err != nil {
		return nil, fmt.Errorf("derive child %d: %w", index, err)
	}
	return &HDKey{key: child}, nil
}

// DerivePath derives a key along a sequence of indices.
func (k *HDKey) DerivePath(indices ...uint32) (*HDKey, error) {
	current := k
	for _, idx := range indices {
		child, err := current.DeriveChild(idx)
		if err != nil {
			return nil, err
		}
		current = child
	}
	return current, nil
}

// DeriveAccount derives the key at m/44'/60'/account'/0/index.
func (k *HDKey) DeriveAccount(account, index uint32) (*HDKey, error) {
	return k.DerivePath(
		PurposeBIP44,
		CoinTypeEthereum,
		bip32.FirstHardenedChild+account,
		ChangeExternal,
		index,
	)
}

// PrivateKeyBytes returns the raw 32-byte private key.
// Returns nil if this is a public-only key.
func (k *HDKey) PrivateKeyBytes() []byte {
	if !k.key.IsPrivate {
		return nil
	}
	raw := k.key.Key
	// bip32 may hand back a 33-byte key with a leading 0x00, or a short
	// key when the scalar has leading zero bytes.
	if len(raw) == 33 && raw[0] == 0 {
		raw = raw[1:]
	}
	out := make([]byte, 32)
	copy(out[32-len(raw):], raw)
	return out
}

// Address derives the EVM account address: the last 20 bytes of
// Keccak-256 over the uncompressed public key without its 0x04 tag.
func (k *HDKey) Address() (common.Address, error) {
	priv := k.PrivateKeyBytes()
	if priv == nil {
		return common.Address{}, fmt.Errorf("cannot derive address from public key")
	}
	key, err := crypto.PrivateKeyFromBytes(priv)
	if err != nil {
		return common.Address{}, err
	}
	defer key.Zero()
	return key.Address(), nil
}
