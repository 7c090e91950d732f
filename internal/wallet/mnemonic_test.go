package wallet

import (
	"errors"
	"strings"
	"testing"
)

const (
	abandonPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	abandonAddr   = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"
	abandonKey    = "0x1ab42cc412b618bdea3a599e3c9bae199ebf030895b039e9db1e30dafb12b727"

	hardhatPhrase = "test test test test test test test test test test test junk"
	hardhatAddr   = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	hardhatKey    = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

func TestGenerateMnemonic(t *testing.T) {
	mnemonic, err := GenerateMnemonic()
	if err != nil {
		t.Fatalf("GenerateMnemonic() error: %v", err)
	}
	if n := len(strings.Fields(mnemonic)); n != MnemonicWords {
		t.Errorf("word count = %d, want %d", n, MnemonicWords)
	}
	if !ValidateMnemonic(mnemonic) {
		t.Error("generated mnemonic should validate")
	}
}

func TestGenerateMnemonic_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		m, err := GenerateMnemonic()
		if err != nil {
			t.Fatalf("GenerateMnemonic() error: %v", err)
		}
		if seen[m] {
			t.Fatalf("duplicate mnemonic after %d draws", i)
		}
		seen[m] = true
	}
}

func TestNormalizeMnemonic(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  abandon   about ", "abandon about"},
		{"ABANDON\tAbout\n", "abandon about"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeMnemonic(tt.in); got != tt.want {
			t.Errorf("NormalizeMnemonic(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateMnemonic(t *testing.T) {
	tests := []struct {
		name     string
		mnemonic string
		valid    bool
	}{
		{"valid 12-word", abandonPhrase, true},
		{"valid hardhat", hardhatPhrase, true},
		{"bad checksum", strings.Repeat("abandon ", 11) + "abandon", false},
		{"unknown word", strings.Repeat("abandon ", 11) + "zzzz", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateMnemonic(tt.mnemonic); got != tt.valid {
				t.Errorf("ValidateMnemonic() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestWordCountError(t *testing.T) {
	err := error(&WordCountError{Count: 11})
	if !errors.Is(err, ErrInvalidWordCount) {
		t.Error("WordCountError should match ErrInvalidWordCount")
	}
	if !strings.Contains(err.Error(), "11") {
		t.Errorf("message %q should carry the count", err.Error())
	}
	var wce *WordCountError
	if !errors.As(err, &wce) || wce.Count != 11 {
		t.Errorf("errors.As count = %v", wce)
	}
}

func TestSeedFromMnemonic_KnownVector(t *testing.T) {
	seed, err := SeedFromMnemonic(abandonPhrase, "TREZOR")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	want := "c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04"
	if got := fmtHex(seed); got != want {
		t.Errorf("seed = %s, want %s", got, want)
	}
	if _, err := SeedFromMnemonic("not valid words here", ""); !errors.Is(err, ErrInvalidMnemonic) {
		t.Errorf("invalid mnemonic error = %v, want ErrInvalidMnemonic", err)
	}
}
