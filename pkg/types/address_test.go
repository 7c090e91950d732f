package types

import (
	"errors"
	"testing"
)

// EIP-55 reference vectors.
const (
	checksummed = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	lowered     = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		valid bool
	}{
		{"checksummed", checksummed, true},
		{"all lower", lowered, true},
		{"all upper body", "0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED", true},
		{"upper prefix", "0X5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"bad checksum", "0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", false},
		{"missing prefix", "5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", false},
		{"too short", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1bea", false},
		{"too long", lowered + "00", false},
		{"non hex", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beazz", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAddress(tt.in)
			if tt.valid && err != nil {
				t.Fatalf("ParseAddress(%q) error: %v", tt.in, err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidAddress) {
				t.Fatalf("ParseAddress(%q) error = %v, want ErrInvalidAddress", tt.in, err)
			}
		})
	}
}

func TestChecksumAddress(t *testing.T) {
	if got := ChecksumAddress(lowered); got != checksummed {
		t.Errorf("ChecksumAddress() = %s, want %s", got, checksummed)
	}
	if got := ChecksumAddress("garbage"); got != "garbage" {
		t.Errorf("ChecksumAddress(garbage) = %s, want input unchanged", got)
	}
}

func TestSameAddress(t *testing.T) {
	if !SameAddress(checksummed, lowered) {
		t.Error("SameAddress should ignore case")
	}
	if SameAddress(checksummed, "0x0000000000000000000000000000000000000000") {
		t.Error("different addresses compared equal")
	}
}

func TestShortAddress(t *testing.T) {
	if got := ShortAddress(checksummed); got != "0x5aAe......BeAed" {
		t.Errorf("ShortAddress() = %s", got)
	}
	if got := ShortAddress("0x12"); got != "0x12" {
		t.Errorf("ShortAddress(short) = %s, want unchanged", got)
	}
}
