package auth

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-wallet/internal/wallet"
)

func TestRecordGuard(t *testing.T) {
	g := NewRecordGuard(NewArgon2Hasher(fastParams()))
	rec := wallet.Record{Address: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"}

	if _, err := g.ProtectRecord(rec, "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("ProtectRecord(short) = %v", err)
	}
	if _, err := g.ProtectRecord(rec, "ééé"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("ProtectRecord(3 chars, 6 bytes) = %v", err)
	}
	protected, err := g.ProtectRecord(rec, "hunter22")
	if err != nil {
		t.Fatalf("ProtectRecord() error: %v", err)
	}
	if rec.PasswordHash != "" {
		t.Error("ProtectRecord mutated its input")
	}
	if !protected.Protected() {
		t.Fatal("protected record has no hash")
	}
	if err := g.VerifyRecord(protected, "hunter22"); err != nil {
		t.Errorf("VerifyRecord(correct) = %v", err)
	}
	if err := g.VerifyRecord(protected, "wrong-pass"); !errors.Is(err, ErrIncorrectPassword) {
		t.Errorf("VerifyRecord(wrong) = %v", err)
	}
}

func TestRecordGuard_UnprotectedAlwaysUnlocks(t *testing.T) {
	g := NewRecordGuard(nil)
	rec := wallet.Record{Address: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"}
	for _, pw := range []string{"", "anything"} {
		if err := g.VerifyRecord(rec, pw); err != nil {
			t.Errorf("VerifyRecord(%q) = %v", pw, err)
		}
	}
}

func TestRecordGuard_LegacyHash(t *testing.T) {
	g := NewRecordGuard(nil)
	rec := wallet.Record{PasswordHash: legacyHunter22}
	if err := g.VerifyRecord(rec, "hunter22"); err != nil {
		t.Errorf("VerifyRecord(legacy) = %v", err)
	}
}
