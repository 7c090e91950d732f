// Package wallet derives EVM accounts from BIP-39 mnemonics and persists
// the resulting wallet records.
package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// MnemonicWords is the number of words in a wallet mnemonic.
const MnemonicWords = 12

// MnemonicEntropyBits is the entropy size for 12-word mnemonics.
const MnemonicEntropyBits = 128

// Mnemonic errors.
var (
	ErrEntropyUnavailable = errors.New("entropy source unavailable")
	ErrInvalidWordCount   = errors.New("invalid word count")
	ErrInvalidMnemonic    = errors.New("invalid mnemonic")
)

// WordCountError reports a phrase with the wrong number of words.
type WordCountError struct {
	Count int
}

func (e *WordCountError) Error() string {
	return fmt.Sprintf("seed phrase must be exactly %d words, got %d", MnemonicWords, e.Count)
}

// Is makes errors.Is(err, ErrInvalidWordCount) match.
func (e *WordCountError) Is(target error) bool {
	return target == ErrInvalidWordCount
}

// GenerateMnemonic creates a new 12-word BIP-39 mnemonic.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(MnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// NormalizeMnemonic trims the phrase, collapses whitespace runs to single
// spaces and lower-cases every word.
func NormalizeMnemonic(phrase string) string {
	return strings.ToLower(strings.Join(strings.Fields(phrase), " "))
}

// CountWords returns the number of whitespace-separated words in phrase.
func CountWords(phrase string) int {
	return len(strings.Fields(phrase))
}

// ValidateMnemonic checks if a mnemonic is valid per BIP-39
// (correct word count, valid words, valid checksum).
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}
