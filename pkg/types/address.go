// Package types holds the wire-level value types shared by the wallet
// engine: EVM account addresses and native-asset amounts.
package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AddressSize is the length of an address in bytes.
const AddressSize = common.AddressLength

// ErrInvalidAddress is returned for strings that are not well-formed
// 0x-prefixed EVM addresses.
var ErrInvalidAddress = errors.New("invalid address")

// ParseAddress validates s and returns the decoded address.
//
// s must carry the 0x prefix and exactly 40 hex digits. All-lower and
// all-upper strings are accepted as-is; a mixed-case string must match its
// EIP-55 checksum, which catches single-character typos.
func ParseAddress(s string) (common.Address, error) {
	if len(s) != 2+2*AddressSize || !(strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		return common.Address{}, fmt.Errorf("%w: %q must be 0x followed by %d hex digits", ErrInvalidAddress, s, 2*AddressSize)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q is not hex", ErrInvalidAddress, s)
	}
	addr := common.HexToAddress(s)
	body := s[2:]
	if isMixedCase(body) && body != addr.Hex()[2:] {
		return common.Address{}, fmt.Errorf("%w: %q fails EIP-55 checksum", ErrInvalidAddress, s)
	}
	return addr, nil
}

// ChecksumAddress returns the EIP-55 form of s, or s unchanged when it
// does not parse.
func ChecksumAddress(s string) string {
	addr, err := ParseAddress(s)
	if err != nil {
		return s
	}
	return addr.Hex()
}

// SameAddress compares two address strings ignoring case.
func SameAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}

// ShortAddress abbreviates an address for display, e.g. 0x1234......cdef0.
func ShortAddress(s string) string {
	if len(s) < 11 {
		return s
	}
	return s[:6] + "......" + s[len(s)-5:]
}

func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}
