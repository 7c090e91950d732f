package tx

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

// Private key of the well-known "abandon ... about" mnemonic at m/44'/60'/0'/0/0.
const (
	testKeyHex  = "0x1ab42cc412b618bdea3a599e3c9bae199ebf030895b039e9db1e30dafb12b727"
	testKeyAddr = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"
)

func TestFeeCost(t *testing.T) {
	gwei := big.NewInt(1_000_000_000)
	got := FeeCost(gwei, TransferGas)
	if got.String() != "21000000000000" {
		t.Errorf("FeeCost(1 gwei) = %s, want 21000000000000", got)
	}
	if FeeCost(nil, TransferGas).Sign() != 0 {
		t.Error("FeeCost(nil) should be zero")
	}
}

func TestMaxSendable(t *testing.T) {
	balance := big.NewInt(100_000)
	if got := MaxSendable(balance, big.NewInt(1)); got.Int64() != 79_000 {
		t.Errorf("MaxSendable = %s, want 79000", got)
	}
	if got := MaxSendable(balance, big.NewInt(10)); got.Sign() != 0 {
		t.Errorf("MaxSendable when fee exceeds balance = %s, want 0", got)
	}
}

func TestParsePrivateKey(t *testing.T) {
	key, err := ParsePrivateKey(testKeyHex)
	if err != nil {
		t.Fatalf("ParsePrivateKey() error: %v", err)
	}
	if got := KeyAddress(key).Hex(); got != testKeyAddr {
		t.Errorf("KeyAddress() = %s, want %s", got, testKeyAddr)
	}

	if _, err := ParsePrivateKey("0x1234"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("ParsePrivateKey(short) error = %v, want ErrInvalidKey", err)
	}
}

func TestBuilder_SignAndRecover(t *testing.T) {
	key, err := ParsePrivateKey(testKeyHex)
	if err != nil {
		t.Fatalf("ParsePrivateKey() error: %v", err)
	}
	to := common.HexToAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	chainID := big.NewInt(80002)

	signed, err := NewBuilder().
		SetNonce(7).
		SetRecipient(to).
		SetValue(big.NewInt(1_000)).
		SetGasPrice(big.NewInt(30_000_000_000)).
		Sign(key, chainID)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}

	if signed.Nonce() != 7 || signed.Gas() != TransferGas {
		t.Errorf("nonce/gas = %d/%d, want 7/%d", signed.Nonce(), signed.Gas(), TransferGas)
	}
	if *signed.To() != to {
		t.Errorf("to = %s, want %s", signed.To().Hex(), to.Hex())
	}
	if signed.ChainId().Cmp(chainID) != 0 {
		t.Errorf("chain id = %s, want %s", signed.ChainId(), chainID)
	}

	from, err := Sender(signed, chainID)
	if err != nil {
		t.Fatalf("Sender() error: %v", err)
	}
	if from.Hex() != testKeyAddr {
		t.Errorf("Sender() = %s, want %s", from.Hex(), testKeyAddr)
	}
}

func TestBuilder_Validation(t *testing.T) {
	to := common.HexToAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")

	tests := []struct {
		name string
		b    *Builder
		want error
	}{
		{"zero value", NewBuilder().SetRecipient(to).SetGasPrice(big.NewInt(1)), ErrZeroValue},
		{"no recipient", NewBuilder().SetValue(big.NewInt(1)).SetGasPrice(big.NewInt(1)), ErrNoRecipient},
		{"low gas", NewBuilder().SetRecipient(to).SetValue(big.NewInt(1)).SetGasPrice(big.NewInt(1)).SetGas(20_000), ErrGasTooLow},
		{"zero gas price", NewBuilder().SetRecipient(to).SetValue(big.NewInt(1)), ErrZeroGasPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.b.Build(); !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuilder_ZeroAddressRecipient(t *testing.T) {
	unsigned, err := NewBuilder().
		SetRecipient(common.Address{}).
		SetValue(big.NewInt(1)).
		SetGasPrice(big.NewInt(1)).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if unsigned.To() == nil || *unsigned.To() != (common.Address{}) {
		t.Errorf("To() = %v, want zero address", unsigned.To())
	}
}
