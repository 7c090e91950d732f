package wallet

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	klog "github.com/Klingon-tech/klingnet-wallet/internal/log"
)

// KeyManager turns mnemonics into wallet records.
type KeyManager struct {
	deriver MnemonicKeyDeriver
}

// NewKeyManager creates a KeyManager. A nil deriver selects BIP39Deriver.
func NewKeyManager(deriver MnemonicKeyDeriver) *KeyManager {
	if deriver == nil {
		deriver = BIP39Deriver{}
	}
	return &KeyManager{deriver: deriver}
}

// Generate creates a wallet from a fresh 12-word mnemonic.
func (m *KeyManager) Generate() (Record, error) {
	mnemonic, err := m.deriver.Generate()
	if err != nil {
		return Record{}, err
	}
	rec, err := m.record(mnemonic)
	if err != nil {
		return Record{}, err
	}
	klog.Wallet.Info().Str("address", rec.Address).Msg("Wallet generated")
	return rec, nil
}

// Import recovers a wallet from an existing phrase. The phrase is trimmed,
// whitespace runs are collapsed and words are lower-cased before checking.
func (m *KeyManager) Import(phrase string) (Record, error) {
	normalized := NormalizeMnemonic(phrase)
	if n := CountWords(normalized); n != MnemonicWords {
		return Record{}, &WordCountError{Count: n}
	}
	if !m.deriver.Validate(normalized) {
		return Record{}, ErrInvalidMnemonic
	}
	rec, err := m.record(normalized)
	if err != nil {
		return Record{}, err
	}
	klog.Wallet.Info().Str("address", rec.Address).Msg("Wallet imported")
	return rec, nil
}

func (m *KeyManager) record(mnemonic string) (Record, error) {
	key, err := m.deriver.Derive(mnemonic)
	if err != nil {
		return Record{}, fmt.Errorf("derive key: %w", err)
	}
	return Record{
		MnemonicPhrase: mnemonic,
		Address:        key.Address.Hex(),
		PrivateKey:     hexutil.Encode(key.PrivateKey),
	}, nil
}
