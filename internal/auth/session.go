// Package auth gates access to wallet secrets behind a password, either one
// password for the whole device or one per wallet record.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	klog "github.com/Klingon-tech/klingnet-wallet/internal/log"
	"github.com/Klingon-tech/klingnet-wallet/internal/storage"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 6

// Auth errors.
var (
	ErrWeakPassword      = errors.New("password must be at least 6 characters")
	ErrAlreadySetup      = errors.New("password already set")
	ErrSetupRequired     = errors.New("password not set up")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrLocked            = errors.New("wallet is locked")
	ErrNotOpen           = errors.New("auth session not opened")
)

// passwordHashKey stores the device password hash.
var passwordHashKey = []byte("passwordHash")

// State is the lock state of a session.
type State int

// Session states.
const (
	Uninitialized State = iota
	AwaitingSetup
	Locked
	Unlocked
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case AwaitingSetup:
		return "awaiting-setup"
	case Locked:
		return "locked"
	case Unlocked:
		return "unlocked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session tracks whether the device password has been presented.
// The unlocked state lives only in memory.
type Session struct {
	mu     sync.Mutex
	db     storage.DB
	hasher PasswordHasher
	state  State
	hash   string
}

// Open loads the device password hash from db with the default hasher.
func Open(db storage.DB) (*Session, error) {
	return OpenWithHasher(db, NewArgon2Hasher(DefaultParams()))
}

// OpenWithHasher loads the device password hash from db.
// The session starts in AwaitingSetup when no hash exists, Locked otherwise.
func OpenWithHasher(db storage.DB, hasher PasswordHasher) (*Session, error) {
	s := &Session{db: db, hasher: hasher}
	data, err := db.Get(passwordHashKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.state = AwaitingSetup
	case err != nil:
		return nil, fmt.Errorf("read password hash: %w", err)
	default:
		s.hash = string(data)
		s.state = Locked
	}
	return s, nil
}

// CheckStrength returns ErrWeakPassword when password has fewer than
// MinPasswordLength characters.
func CheckStrength(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Setup sets the device password on first run and unlocks the session.
func (s *Session) Setup(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Uninitialized {
		return ErrNotOpen
	}
	if err := CheckStrength(password); err != nil {
		return err
	}
	if s.hash != "" {
		return ErrAlreadySetup
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.Put(passwordHashKey, []byte(hash)); err != nil {
		return fmt.Errorf("store password hash: %w", err)
	}
	s.hash = hash
	s.state = Unlocked
	klog.Auth.Info().Msg("Device password set")
	return nil
}

// Verify checks password against the stored hash and unlocks on a match.
// A mismatch leaves the state unchanged. A matching legacy SHA-256 hash is
// replaced with an Argon2id hash.
func (s *Session) Verify(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Uninitialized:
		return ErrNotOpen
	case AwaitingSetup:
		return ErrSetupRequired
	}
	ok, err := s.hasher.Verify(s.hash, password)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		klog.Auth.Warn().Msg("Incorrect password")
		return ErrIncorrectPassword
	}
	s.state = Unlocked

	if IsLegacyHash(s.hash) {
		s.upgrade(password)
	}
	return nil
}

// upgrade rehashes a legacy digest. Failure keeps the old hash usable.
func (s *Session) upgrade(password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.db.Put(passwordHashKey, []byte(hash))
	}
	if err != nil {
		klog.Auth.Warn().Err(err).Msg("Legacy password hash upgrade failed")
		return
	}
	s.hash = hash
	klog.Auth.Info().Msg("Legacy password hash upgraded")
}

// Lock returns an unlocked session to Locked.
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Unlocked {
		s.state = Locked
	}
}

// RequireUnlocked returns ErrLocked unless the session is unlocked.
func (s *Session) RequireUnlocked() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Unlocked {
		return ErrLocked
	}
	return nil
}
