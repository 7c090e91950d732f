package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// SaltSize is the random salt length for new password hashes.
const SaltSize = 16

// Upper bounds accepted when decoding a stored hash.
const (
	MaxMemory     = 1024 * 1024 // 1 GiB in KiB
	MaxIterations = 64
	MaxKeyLen     = 64
)

// ErrMalformedHash is returned when a stored hash cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

// PasswordHasher turns passwords into storable hashes and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

// Params holds Argon2id cost parameters.
type Params struct {
	Memory      uint32 // in KiB
	Iterations  uint32
	Parallelism uint8
	KeyLen      uint32
}

// DefaultParams returns recommended Argon2id parameters.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024, // 64 MB
		Iterations:  3,
		Parallelism: 4,
		KeyLen:      32,
	}
}

// Argon2Hasher hashes with Argon2id and encodes results in PHC string
// format: $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>.
//
// It also verifies the unsalted hex SHA-256 digests written by older
// wallet builds.
type Argon2Hasher struct {
	Params Params
}

// NewArgon2Hasher creates a hasher with the given cost parameters.
func NewArgon2Hasher(p Params) *Argon2Hasher {
	return &Argon2Hasher{Params: p}
}

// Hash returns the PHC-encoded Argon2id hash of password.
func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	p := h.Params
	sum := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify reports whether password matches hash.
func (h *Argon2Hasher) Verify(hash, password string) (bool, error) {
	if IsLegacyHash(hash) {
		want, _ := hex.DecodeString(hash)
		got := sha256.Sum256([]byte(password))
		return subtle.ConstantTimeCompare(got[:], want) == 1, nil
	}

	p, salt, want, err := decodePHC(hash)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLen)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// IsLegacyHash reports whether hash is a bare 64-character hex SHA-256 digest.
func IsLegacyHash(hash string) bool {
	if len(hash) != 2*sha256.Size {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

func decodePHC(s string) (Params, []byte, []byte, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrMalformedHash
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("%w: version %q", ErrMalformedHash, parts[2])
	}
	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return Params{}, nil, nil, fmt.Errorf("%w: params: %v", ErrMalformedHash, err)
	}
	if p.Iterations == 0 || p.Parallelism == 0 {
		return Params{}, nil, nil, fmt.Errorf("%w: zero cost", ErrMalformedHash)
	}
	if p.Memory > MaxMemory || p.Iterations > MaxIterations {
		return Params{}, nil, nil, fmt.Errorf("%w: cost m=%d,t=%d out of range", ErrMalformedHash, p.Memory, p.Iterations)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	sum, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(sum) == 0 || len(sum) > MaxKeyLen {
		return Params{}, nil, nil, fmt.Errorf("%w: hash", ErrMalformedHash)
	}
	p.KeyLen = uint32(len(sum))
	return p, salt, sum, nil
}
