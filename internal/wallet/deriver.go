package wallet

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// DerivedKey is the account key material derived from a mnemonic.
type DerivedKey struct {
	Address    common.Address
	PrivateKey []byte
}

// MnemonicKeyDeriver generates and validates mnemonics and derives the
// account key for a mnemonic.
type MnemonicKeyDeriver interface {
	Generate() (string, error)
	Derive(mnemonic string) (DerivedKey, error)
	Validate(mnemonic string) bool
}

// BIP39Deriver derives m/44'/60'/Account'/0/Index from a BIP-39 mnemonic
// with an empty passphrase. The zero value derives the first account.
type BIP39Deriver struct {
	Account uint32
	Index   uint32
}

// Generate returns a fresh 12-word mnemonic.
func (BIP39Deriver) Generate() (string, error) {
	return GenerateMnemonic()
}

// Validate reports whether mnemonic passes the BIP-39 wordlist and checksum.
func (BIP39Deriver) Validate(mnemonic string) bool {
	return ValidateMnemonic(mnemonic)
}

// Derive computes the account key for mnemonic.
func (d BIP39Deriver) Derive(mnemonic string) (DerivedKey, error) {
	seed, err := SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return DerivedKey{}, err
	}
	master, err := NewMasterKey(seed)
	if err != nil {
		return DerivedKey{}, err
	}
	key, err := master.DeriveAccount(d.Account, d.Index)
	if err != nil {
		return DerivedKey{}, fmt.Errorf("derive account: %w", err)
	}
	addr, err := key.Address()
	if err != nil {
		return DerivedKey{}, err
	}
	return DerivedKey{Address: addr, PrivateKey: key.PrivateKeyBytes()}, nil
}
