package tx

import "errors"

// Validation errors.
var (
	ErrZeroValue    = errors.New("transfer value is zero")
	ErrNoRecipient  = errors.New("transfer has no recipient")
	ErrGasTooLow    = errors.New("gas below transfer minimum")
	ErrZeroGasPrice = errors.New("gas price is zero")
	ErrInvalidKey   = errors.New("invalid private key")
)

func validate(b *Builder) error {
	if b.value == nil || b.value.Sign() <= 0 {
		return ErrZeroValue
	}
	if b.to == nil {
		return ErrNoRecipient
	}
	if b.gas < TransferGas {
		return ErrGasTooLow
	}
	if b.gasPrice == nil || b.gasPrice.Sign() <= 0 {
		return ErrZeroGasPrice
	}
	return nil
}
