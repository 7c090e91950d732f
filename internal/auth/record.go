package auth

import (
	"fmt"

	klog "github.com/Klingon-tech/klingnet-wallet/internal/log"
	"github.com/Klingon-tech/klingnet-wallet/internal/wallet"
)

// RecordGuard implements per-wallet passwords stored on each record.
type RecordGuard struct {
	hasher PasswordHasher
}

// NewRecordGuard creates a guard. A nil hasher selects Argon2id defaults.
func NewRecordGuard(hasher PasswordHasher) *RecordGuard {
	if hasher == nil {
		hasher = NewArgon2Hasher(DefaultParams())
	}
	return &RecordGuard{hasher: hasher}
}

// ProtectRecord returns a copy of rec carrying the hash of password.
func (g *RecordGuard) ProtectRecord(rec wallet.Record, password string) (wallet.Record, error) {
	if err := CheckStrength(password); err != nil {
		return wallet.Record{}, err
	}
	hash, err := g.hasher.Hash(password)
	if err != nil {
		return wallet.Record{}, fmt.Errorf("hash password: %w", err)
	}
	rec.PasswordHash = hash
	return rec, nil
}

// VerifyRecord checks password against the record's own hash.
// Records without a hash predate per-wallet passwords and always unlock.
func (g *RecordGuard) VerifyRecord(rec wallet.Record, password string) error {
	if !rec.Protected() {
		klog.Auth.Debug().Str("address", rec.Address).Msg("Unprotected wallet unlocked")
		return nil
	}
	ok, err := g.hasher.Verify(rec.PasswordHash, password)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		klog.Auth.Warn().Str("address", rec.Address).Msg("Incorrect wallet password")
		return ErrIncorrectPassword
	}
	return nil
}
