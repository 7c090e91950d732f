package tx

import "math/big"

// TransferGas is the fixed gas allowance of a plain value transfer to an
// externally owned account.
const TransferGas uint64 = 21000

// FeeCost returns gasPrice * gas in wei.
func FeeCost(gasPrice *big.Int, gas uint64) *big.Int {
	if gasPrice == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gas))
}

// TotalCost returns the wei a sender must hold to pay value plus fee.
func TotalCost(value, fee *big.Int) *big.Int {
	return new(big.Int).Add(value, fee)
}

// MaxSendable returns balance minus the transfer fee, or zero when the
// fee alone exceeds the balance.
func MaxSendable(balance, gasPrice *big.Int) *big.Int {
	out := new(big.Int).Sub(balance, FeeCost(gasPrice, TransferGas))
	if out.Sign() < 0 {
		return new(big.Int)
	}
	return out
}
