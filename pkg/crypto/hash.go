// Package crypto provides the key and hash primitives behind EVM accounts.
package crypto

import (
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Keccak256 computes the legacy Keccak-256 hash used by Ethereum.
func Keccak256(data ...[]byte) common.Hash {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	var h common.Hash
	d.Sum(h[:0])
	return h
}
