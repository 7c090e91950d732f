package wallet

import (
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// fakeDeriver returns a fixed mnemonic and derives a fixed key.
type fakeDeriver struct {
	mnemonic string
	genErr   error
	valid    bool
	calls    int
}

func (f *fakeDeriver) Generate() (string, error) { return f.mnemonic, f.genErr }
func (f *fakeDeriver) Validate(string) bool      { return f.valid }
func (f *fakeDeriver) Derive(string) (DerivedKey, error) {
	f.calls++
	return DerivedKey{
		Address:    common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		PrivateKey: []byte{0x01, 0x02},
	}, nil
}

func TestKeyManager_Generate(t *testing.T) {
	km := NewKeyManager(nil)
	rec, err := km.Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if n := CountWords(rec.MnemonicPhrase); n != MnemonicWords {
		t.Errorf("word count = %d, want %d", n, MnemonicWords)
	}
	if _, err := types.ParseAddress(rec.Address); err != nil {
		t.Errorf("address %q not well-formed: %v", rec.Address, err)
	}
	if !strings.HasPrefix(rec.PrivateKey, "0x") || len(rec.PrivateKey) != 66 {
		t.Errorf("private key %q malformed", rec.PrivateKey)
	}

	// Round trip: importing the generated phrase yields the same record.
	again, err := km.Import(rec.MnemonicPhrase)
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if again != rec {
		t.Errorf("Import(Generate().phrase) = %+v, want %+v", again, rec)
	}
}

func TestKeyManager_GenerateUnique(t *testing.T) {
	km := NewKeyManager(nil)
	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		rec, err := km.Generate()
		if err != nil {
			t.Fatal(err)
		}
		if seen[rec.Address] {
			t.Fatalf("duplicate address %s", rec.Address)
		}
		seen[rec.Address] = true
	}
}

func TestKeyManager_GenerateEntropyFailure(t *testing.T) {
	km := NewKeyManager(&fakeDeriver{genErr: ErrEntropyUnavailable})
	if _, err := km.Generate(); !errors.Is(err, ErrEntropyUnavailable) {
		t.Errorf("Generate() error = %v, want ErrEntropyUnavailable", err)
	}
}

func TestKeyManager_ImportKnownVector(t *testing.T) {
	km := NewKeyManager(nil)
	messy := "  TEST test\t test test  test test test test test test test\n junk "
	rec, err := km.Import(messy)
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if rec.MnemonicPhrase != hardhatPhrase {
		t.Errorf("phrase = %q, want normalized %q", rec.MnemonicPhrase, hardhatPhrase)
	}
	if rec.Address != hardhatAddr {
		t.Errorf("address = %s, want %s", rec.Address, hardhatAddr)
	}
	if rec.PrivateKey != hardhatKey {
		t.Errorf("private key = %s, want %s", rec.PrivateKey, hardhatKey)
	}
}

func TestKeyManager_ImportDeterministic(t *testing.T) {
	km := NewKeyManager(nil)
	a, err := km.Import(abandonPhrase)
	if err != nil {
		t.Fatal(err)
	}
	b, err := km.Import(abandonPhrase)
	if err != nil {
		t.Fatal(err)
	}
	if a.Address != b.Address || a.Address != abandonAddr {
		t.Errorf("addresses %s, %s; want %s", a.Address, b.Address, abandonAddr)
	}
}

func TestKeyManager_ImportErrors(t *testing.T) {
	tests := []struct {
		name   string
		phrase string
		count  int
		want   error
	}{
		{"empty", "", 0, ErrInvalidWordCount},
		{"blank", "   ", 0, ErrInvalidWordCount},
		{"eleven words", strings.Repeat("abandon ", 11), 11, ErrInvalidWordCount},
		{"thirteen words", abandonPhrase + " about", 13, ErrInvalidWordCount},
		{"bad checksum", strings.Repeat("abandon ", 12), 0, ErrInvalidMnemonic},
		{"not in wordlist", strings.Repeat("abandon ", 11) + "wallet1", 0, ErrInvalidMnemonic},
	}
	km := NewKeyManager(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := km.Import(tt.phrase)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Import() error = %v, want %v", err, tt.want)
			}
			var wce *WordCountError
			if errors.As(err, &wce) && wce.Count != tt.count {
				t.Errorf("count = %d, want %d", wce.Count, tt.count)
			}
		})
	}
}

func TestKeyManager_ImportSkipsDeriveWhenInvalid(t *testing.T) {
	f := &fakeDeriver{valid: false}
	km := NewKeyManager(f)
	if _, err := km.Import(abandonPhrase); !errors.Is(err, ErrInvalidMnemonic) {
		t.Fatalf("Import() error = %v", err)
	}
	if f.calls != 0 {
		t.Errorf("Derive called %d times for invalid phrase", f.calls)
	}
}

func TestKeyManager_UsesDeriver(t *testing.T) {
	f := &fakeDeriver{mnemonic: abandonPhrase, valid: true}
	rec, err := NewKeyManager(f).Generate()
	if err != nil {
		t.Fatal(err)
	}
	if !types.SameAddress(rec.Address, "0x00000000000000000000000000000000000000aa") {
		t.Errorf("address = %s", rec.Address)
	}
	if rec.PrivateKey != "0x0102" {
		t.Errorf("private key = %s", rec.PrivateKey)
	}
}

func TestKeyManager_ImportElevenLetters(t *testing.T) {
	_, err := NewKeyManager(nil).Import("a b c d e f g h i j k")
	var wce *WordCountError
	if !errors.As(err, &wce) || wce.Count != 11 {
		t.Fatalf("Import() error = %v, want WordCountError{11}", err)
	}
}
